package app

import (
	"errors"
	"fmt"

	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
)

// User-facing texts shown in place of the plan when something fails.
const (
	msgMissingCredential = "Kunci API tidak tersedia. Pastikan API_KEY telah dikonfigurasi dengan benar di environment sebelum menjalankan aplikasi."
	msgEmptyResponse     = "Gagal menghasilkan konten RPP. AI mengembalikan respons kosong. Silakan sesuaikan input Anda atau coba lagi nanti."
	msgGenerateFailed    = "Terjadi kesalahan saat membuat RPP. Silakan coba lagi."
	msgOracleFormat      = "Terjadi kesalahan: %s. Pastikan API Key valid dan model tersedia."

	msgPDFEmpty   = "Gagal membuat PDF: Konten RPP tidak valid atau kosong setelah pembersihan."
	msgPDFFormat  = "Kesalahan PDF: %s"
	msgPDFFailed  = "Gagal membuat file PDF. Silakan coba lagi."
	msgTextEmpty  = "Gagal membuat TXT: Konten RPP tidak valid atau kosong setelah pembersihan."
	msgTextFormat = "Kesalahan TXT: %s"
)

func generationMessage(err error) (msg, result string) {
	var oerr *generator.OracleError
	switch {
	case errors.Is(err, generator.ErrMissingCredential):
		return msgMissingCredential, "missing_credential"
	case errors.Is(err, generator.ErrEmptyResponse):
		return msgEmptyResponse, "empty_response"
	case errors.As(err, &oerr):
		return fmt.Sprintf(msgOracleFormat, oerr.Detail), "oracle_error"
	default:
		return msgGenerateFailed, "error"
	}
}

func exportMessage(op Operation, err error) (msg, result string) {
	var rerr *exporter.RenderError
	empty := errors.Is(err, exporter.ErrEmptyContent)
	switch {
	case op == OpExportPDF && empty:
		return msgPDFEmpty, "empty_content"
	case op == OpExportPDF && errors.As(err, &rerr):
		return fmt.Sprintf(msgPDFFormat, rerr.Detail), "render_error"
	case op == OpExportPDF:
		return msgPDFFailed, "error"
	case empty:
		return msgTextEmpty, "empty_content"
	default:
		return fmt.Sprintf(msgTextFormat, err.Error()), "error"
	}
}
