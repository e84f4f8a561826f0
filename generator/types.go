package generator

// LessonPlanInput describes the lesson a Modul Ajar is requested for.
// Every field is free text; empty values are allowed.
type LessonPlanInput struct {
	Subject            string `json:"mata_pelajaran" form:"mata_pelajaran"`
	Phase              string `json:"fase" form:"fase"`
	Grade              string `json:"kelas" form:"kelas"`
	Semester           string `json:"semester" form:"semester"`
	Topic              string `json:"materi" form:"materi"`
	TimeAllocation     string `json:"alokasi_waktu" form:"alokasi_waktu"`
	LearningObjectives string `json:"tujuan_pembelajaran" form:"tujuan_pembelajaran"`
}

// Plan is the model output for one submission. Text is kept exactly as the
// model returned it; Title and Summary are derived for display only.
type Plan struct {
	Text    string `json:"text"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
