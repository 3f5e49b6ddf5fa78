package view

// NotebookEntry: DTO для отображения записи дневника в режиме «только чтение».
type NotebookEntry struct {
	ID        string
	Date      string
	MoodIcon  string
	MoodLabel string
	Title     string
	Content   string
	Tags      []string
	Private   bool

	// Поля клинического представления (для психолога)
	PatientName string
	CreatedAt   string
	UpdatedAt   string
}
