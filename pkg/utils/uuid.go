package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// documentIDLength segue o tamanho dos IDs automáticos do Firestore
const documentIDLength = 20

func GenerateDocumentID() (string, error) {
	return gonanoid.Generate(characters, documentIDLength)
}
