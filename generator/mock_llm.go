package generator

import (
	"context"
	"regexp"
	"strings"
)

// MockLLM is a local stand-in that never calls a model. It echoes the
// prompt's lesson data into a small but well-formed Modul Ajar.
type MockLLM struct{}

var promptFieldRe = regexp.MustCompile(`(?m)^- (Mata Pelajaran|Fase|Kelas|Materi Pokok|Alokasi Waktu|Tujuan Pembelajaran): (.*)$`)

func (m MockLLM) Complete(_ context.Context, _ string, prompt string) (string, error) {
	fields := map[string]string{}
	for _, match := range promptFieldRe.FindAllStringSubmatch(prompt, -1) {
		fields[match[1]] = strings.TrimSpace(match[2])
	}

	var sb strings.Builder
	sb.WriteString("# Modul Ajar ")
	sb.WriteString(fields["Mata Pelajaran"])
	sb.WriteString("\n\nContoh modul ajar yang dibuat tanpa memanggil model.\n\n")
	sb.WriteString("## Informasi Umum\n\n")
	sb.WriteString("- **Fase/Kelas:** " + fields["Fase"] + " / " + fields["Kelas"] + "\n")
	sb.WriteString("- **Materi:** " + fields["Materi Pokok"] + "\n")
	sb.WriteString("- **Alokasi Waktu:** " + fields["Alokasi Waktu"] + "\n\n")
	sb.WriteString("## Komponen Inti\n\n")
	sb.WriteString("### Tujuan Pembelajaran\n\n")
	sb.WriteString(fields["Tujuan Pembelajaran"] + "\n\n")
	sb.WriteString("## Kegiatan Pembelajaran\n\n")
	sb.WriteString("1. Pendahuluan *(Mindful)*\n2. Kegiatan Inti *(Meaningful)*\n3. Penutup *(Joyful)*\n\n")
	sb.WriteString("## Asesmen\n\n")
	sb.WriteString("| Aspek | Kriteria |\n|---|---|\n| Pemahaman | Menjelaskan konsep dengan tepat |\n\n")
	sb.WriteString("---\n\n## Refleksi\n\nApa yang paling bermakna dari pembelajaran hari ini?\n")
	return sb.String(), nil
}
