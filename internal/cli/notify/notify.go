package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Toast: короткое уведомление пользователю.
type Toast struct {
	Kind    Kind
	Message string
}

// Notifier принимает уведомления. Реализации должны быть безопасны для конкурентного вызова.
type Notifier interface {
	Notify(t Toast)
}

// Successf отправляет уведомление об успехе.
func Successf(n Notifier, format string, args ...any) {
	n.Notify(Toast{Kind: Success, Message: fmt.Sprintf(format, args...)})
}

// Errorf отправляет уведомление об ошибке.
func Errorf(n Notifier, format string, args ...any) {
	n.Notify(Toast{Kind: Error, Message: fmt.Sprintf(format, args...)})
}

var (
	colorGreen = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed   = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorBlue  = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}

	toastBase = lipgloss.NewStyle().Bold(true)
)

// Style возвращает стиль для типа уведомления.
func Style(k Kind) lipgloss.Style {
	switch k {
	case Success:
		return toastBase.Foreground(colorGreen)
	case Error:
		return toastBase.Foreground(colorRed)
	default:
		return toastBase.Foreground(colorBlue)
	}
}

// Render форматирует уведомление в одну строку.
func Render(t Toast) string {
	icon := "ℹ"
	switch t.Kind {
	case Success:
		icon = "✓"
	case Error:
		icon = "✗"
	}
	return Style(t.Kind).Render(icon + " " + t.Message)
}

// Writer печатает уведомления в поток (stderr CLI).
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter создаёт Notifier поверх w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

func (w *Writer) Notify(t Toast) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, Render(t))
}

// Recorder накапливает уведомления (TUI и тесты).
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// All возвращает копию накопленных уведомлений.
func (r *Recorder) All() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last возвращает последнее уведомление.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Drain возвращает и очищает накопленные уведомления.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}
