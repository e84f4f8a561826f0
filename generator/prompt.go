package generator

import (
	"fmt"
	"strings"
)

// modulSections is the fixed outline the model must follow, in order.
var modulSections = []string{
	"Informasi Umum (identitas modul, kompetensi awal, profil pelajar Pancasila, sarana dan prasarana, target peserta didik, model pembelajaran)",
	"Komponen Inti (tujuan pembelajaran, pemahaman bermakna, pertanyaan pemantik)",
	"Kegiatan Pembelajaran (Pendahuluan, Kegiatan Inti, Penutup) lengkap dengan alokasi waktu tiap tahap",
	"Asesmen (diagnostik, formatif, sumatif) beserta instrumen dan rubrik",
	"Pengayaan dan Remedial",
	"Refleksi Guru dan Peserta Didik",
	"Lampiran (Lembar Kerja Peserta Didik, bahan bacaan, glosarium, daftar pustaka)",
}

// BuildPrompt turns the form input into the prompt sent to the model.
// It never fails; empty fields are passed through as-is.
func BuildPrompt(in LessonPlanInput) string {
	var sb strings.Builder
	sb.WriteString("Anda adalah seorang guru ahli dan perancang kurikulum Kurikulum Merdeka di Indonesia.\n")
	sb.WriteString("Buatlah Rencana Pelaksanaan Pembelajaran (RPP) / Modul Ajar yang lengkap, inovatif, dan siap digunakan ")
	sb.WriteString("dengan menerapkan prinsip Mindful Learning, Meaningful Learning, dan Joyful Learning.\n\n")

	sb.WriteString("Data pembelajaran:\n")
	writeField(&sb, "Mata Pelajaran", in.Subject)
	writeField(&sb, "Fase", in.Phase)
	writeField(&sb, "Kelas", in.Grade)
	writeField(&sb, "Semester", in.Semester)
	writeField(&sb, "Materi Pokok", in.Topic)
	writeField(&sb, "Alokasi Waktu", in.TimeAllocation)
	writeField(&sb, "Tujuan Pembelajaran", in.LearningObjectives)
	sb.WriteString("\n")

	sb.WriteString("Susun dokumen dengan struktur berikut secara berurutan:\n")
	for i, s := range modulSections {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
	}
	sb.WriteString("\n")

	sb.WriteString("Ketentuan penulisan:\n")
	sb.WriteString("- Gunakan Bahasa Indonesia yang baku, hangat, dan mudah dipahami guru.\n")
	sb.WriteString("- Tandai secara eksplisit aktivitas yang mencerminkan Mindful, Meaningful, dan Joyful Learning.\n")
	sb.WriteString("- Bagi alokasi waktu ke tiap kegiatan sehingga totalnya sesuai alokasi waktu di atas.\n")
	sb.WriteString("- Format keluaran dalam Markdown: satu judul level 1 (#), bagian utama dengan ##, sub-bagian dengan ###.\n")
	sb.WriteString("- Gunakan daftar berpoin atau bernomor untuk langkah kegiatan dan tabel Markdown untuk rubrik asesmen.\n")
	sb.WriteString("- Langsung tuliskan dokumennya tanpa kalimat pembuka atau penutup di luar dokumen, dan jangan membungkusnya dalam blok kode.\n")
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString("- ")
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
