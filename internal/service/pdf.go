package service

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 20.0 // мм
	pdfLineHeight = 6.0
)

// newDocumentPDF раскладывает заголовок и абзацы на страницы A4 шрифтом Helvetica.
// Длинный текст переносится по словам и продолжается на следующих страницах.
// Текст переводится в cp1252, чтобы испанские символы (ñ, á, ¿) печатались как есть.
func newDocumentPDF(title string, lines []string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("PsyDesk", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(pdfLineHeight)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		if line == "" {
			pdf.Ln(pdfLineHeight)
			continue
		}
		pdf.MultiCell(0, pdfLineHeight, tr(line), "", "L", false)
	}
	return pdf
}

// renderPDF возвращает готовый PDF документа.
func renderPDF(title string, lines []string) ([]byte, error) {
	pdf := newDocumentPDF(title, lines)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
