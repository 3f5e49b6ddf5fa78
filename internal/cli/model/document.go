package model

// Document: бинарный документ (квитанция, договор), скачанный с сервера.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}
