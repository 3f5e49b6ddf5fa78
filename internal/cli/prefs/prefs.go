package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"PsyDesk/internal/cli/model"

	"github.com/spf13/viper"
)

// Prefs: презентационные настройки клиента (YAML).
type Prefs struct {
	// PageSize: записей на страницу дневника.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// AnalysisDays: период анализа по умолчанию (7, 15 или 30).
	AnalysisDays int `mapstructure:"analysis_days" yaml:"analysis_days"`

	// DateLayout: формат дат в Go-нотации.
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout"`

	// MoodColors переопределяет цвета настроений, ключ: значение mood.
	MoodColors map[string]string `mapstructure:"mood_colors" yaml:"mood_colors"`
}

const (
	defaultPageSize   = 10
	maxPageSize       = 100
	defaultDays       = 7
	defaultDateLayout = "02/01/2006"
)

// Default возвращает настройки по умолчанию.
func Default() Prefs {
	return Prefs{
		PageSize:     defaultPageSize,
		AnalysisDays: defaultDays,
		DateLayout:   defaultDateLayout,
		MoodColors:   map[string]string{},
	}
}

// Load читает настройки из YAML. Отсутствующий файл даёт настройки по умолчанию.
func Load(path string) (Prefs, error) {
	if path == "" {
		return Default(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("page_size", defaultPageSize)
	v.SetDefault("analysis_days", defaultDays)
	v.SetDefault("date_layout", defaultDateLayout)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Default(), nil
		}
		return Prefs{}, fmt.Errorf("reading prefs %s: %w", path, err)
	}

	p := Default()
	if err := v.Unmarshal(&p); err != nil {
		return Prefs{}, fmt.Errorf("parsing prefs %s: %w", path, err)
	}
	p.normalize()
	return p, nil
}

// Save пишет настройки в YAML, создавая каталог при необходимости.
func Save(path string, p Prefs) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating prefs directory %s: %w", dir, err)
	}
	p.normalize()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("page_size", p.PageSize)
	v.Set("analysis_days", p.AnalysisDays)
	v.Set("date_layout", p.DateLayout)
	v.Set("mood_colors", p.MoodColors)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing prefs to %s: %w", path, err)
	}
	return nil
}

func (p *Prefs) normalize() {
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if !model.ValidAnalysisPeriod(p.AnalysisDays) {
		p.AnalysisDays = defaultDays
	}
	if strings.TrimSpace(p.DateLayout) == "" {
		p.DateLayout = defaultDateLayout
	}
	colors := make(map[string]string, len(p.MoodColors))
	for k, c := range p.MoodColors {
		if m, ok := model.ParseMood(k); ok && c != "" {
			colors[string(m)] = c
		}
	}
	p.MoodColors = colors
}
