package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(visitID int) ([]byte, error)
}

type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(visitID int) ([]byte, error) {
	qrData := fmt.Sprintf("%s/report.html?visit_id=%d", g.BaseURL, visitID)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}
