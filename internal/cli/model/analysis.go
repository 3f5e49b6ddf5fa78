package model

// AnalysisPeriods: допустимые окна недельного анализа, в днях.
var AnalysisPeriods = []int{7, 15, 30}

// ValidAnalysisPeriod сообщает, является ли days одним из AnalysisPeriods.
func ValidAnalysisPeriod(days int) bool {
	for _, d := range AnalysisPeriods {
		if d == days {
			return true
		}
	}
	return false
}

// AnalysisRequest: тело POST /api/diary/analysis.
type AnalysisRequest struct {
	PatientID ID  `json:"patient_id"`
	Days      int `json:"days"`
}

// WeeklyAnalysis: результат серверной агрегации записей за период.
type WeeklyAnalysis struct {
	PatientID        ID           `json:"patient_id"`
	Days             int          `json:"days"`
	DateFrom         Date         `json:"date_from"`
	DateTo           Date         `json:"date_to"`
	EntriesCount     int          `json:"entries_count"`
	Summary          string       `json:"summary"`
	MoodDistribution map[Mood]int `json:"mood_distribution"`
	CommonThemes     Tags         `json:"common_themes"`
	AIGenerated      Flag         `json:"ai_generated"`
}
