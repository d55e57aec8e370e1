package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/store"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"github.com/vfg2006/sales-manager-api/pkg/middleware"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || middleware.IsOriginAllowed(origin)
	},
}

// LiveMessage é enviado a cada mudança do store
type LiveMessage struct {
	State    store.State         `json:"state"`
	SaleRows []domain.SaleRow    `json:"saleRows"`
	Summary  domain.SalesSummary `json:"summary"`
}

// Live mantém um websocket que recebe o estado do dono a cada mutação. Estados
// intermediários podem ser pulados quando o cliente é lento: apenas o mais
// recente é enviado.
func Live(sessions *session.Manager, unknownLabel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ownerID, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.L.WithContext(r.Context()).WithError(err).Warn("Erro no upgrade do websocket")
			return
		}
		defer conn.Close()

		logger := log.L.WithContext(r.Context()).WithField("owner_id", ownerID)
		logger.Info("Conexão ao vivo aberta")

		st := sess.Store()
		pending := make(chan struct{}, 1)
		signal := func(store.State) {
			select {
			case pending <- struct{}{}:
			default:
			}
		}
		cancel := st.Listen(signal)
		defer cancel()

		closed := make(chan struct{})
		go readLive(conn, closed)

		ticker := time.NewTicker(livePingPeriod)
		defer ticker.Stop()

		signal(store.State{})
		for {
			select {
			case <-closed:
				logger.Info("Conexão ao vivo encerrada pelo cliente")
				return

			case <-r.Context().Done():
				return

			case <-st.Done():
				logger.Info("Sessão encerrada, fechando conexão ao vivo")
				closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "sessão encerrada")
				_ = conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(liveWriteWait))
				return

			case <-pending:
				message := LiveMessage{
					State:    st.Snapshot(),
					SaleRows: st.SaleRows(unknownLabel),
					Summary:  st.Summary(),
				}

				_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
				if err := conn.WriteJSON(message); err != nil {
					logger.WithError(err).Warn("Erro ao enviar estado ao vivo")
					return
				}

			case <-ticker.C:
				// Conexão aberta conta como uso da sessão
				sessions.Lookup(ownerID)

				_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

// readLive descarta mensagens do cliente e fecha closed quando a conexão cai
func readLive(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
