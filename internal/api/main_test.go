package api

import (
	"os"
	"testing"

	"github.com/vfg2006/sales-manager-api/pkg/log"
)

func TestMain(m *testing.M) {
	log.SetupTestLogger()
	os.Exit(m.Run())
}
