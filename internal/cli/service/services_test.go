package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// newTestSet поднимает httptest-сервер с заданным ответом и записывает входящие запросы.
func newTestSet(t *testing.T, status int, body string) (*Set, *[]recorded) {
	t.Helper()
	var calls []recorded
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return NewSet(api.NewClient(ts.URL, nil, nil)), &calls
}

func TestDiaryService_List_SendsFiltersAndNormalizes(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"data":[{"id":"4","mood":"very_sad","tags":"[\"a\"]"}],"current_page":1,"last_page":0,"per_page":10,"total":1}`)

	f := model.DiaryFilters{
		PatientID: 9,
		Mood:      model.MoodSad,
		DateFrom:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Search:    "ansiedad",
		Page:      2,
	}
	page, err := set.Diary.List(context.Background(), f, 10)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/api/diary", c.path)
	assert.Equal(t, "date_from=2025-01-02&mood=sad&page=2&patient_id=9&per_page=10&search=ansiedad", c.query)

	assert.Equal(t, 1, page.LastPage, "last_page < 1 treated as 1")
	require.Len(t, page.Data, 1)
	assert.Equal(t, model.ID(4), page.Data[0].ID)
	assert.Equal(t, model.MoodVerySad, page.Data[0].Mood)
	assert.Equal(t, []string{"a"}, []string(page.Data[0].Tags))
}

func TestDiaryService_CreateDeleteAnalyze(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"id":1,"days":7,"summary":"ok"}`)
	ctx := context.Background()

	priv := true
	_, err := set.Diary.Create(ctx, model.NewDiaryEntry{Content: "hoy", IsPrivate: &priv})
	require.NoError(t, err)
	require.NoError(t, set.Diary.Delete(ctx, 3))
	a, err := set.Diary.Analyze(ctx, model.AnalysisRequest{PatientID: 5, Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, a.Days)

	require.Len(t, *calls, 3)
	assert.Equal(t, "/api/diary", (*calls)[0].path)
	assert.Equal(t, "hoy", (*calls)[0].body["content"])
	assert.Equal(t, true, (*calls)[0].body["is_private"])
	_, hasMood := (*calls)[0].body["mood"]
	assert.False(t, hasMood, "unset mood omitted")
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
	assert.Equal(t, "/api/diary/3", (*calls)[1].path)
	assert.Equal(t, "/api/diary/analysis", (*calls)[2].path)
	assert.EqualValues(t, 7, (*calls)[2].body["days"])
}

func TestAuthService_LoginAndValidation(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"token":"t1","user":{"id":1,"email":"a@b.c","role":"psychologist"}}`)
	ctx := context.Background()

	_, err := set.Auth.Login(ctx, " ", "x")
	assert.Error(t, err)
	assert.Empty(t, *calls, "validation happens before network")

	resp, err := set.Auth.Login(ctx, " a@b.c ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, model.RolePsychologist, resp.User.Role)
	assert.Equal(t, "a@b.c", (*calls)[0].body["email"])

	_, err = set.Auth.Register(ctx, model.Registration{Email: "n@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, (*calls)[1].body["role"], "default role")
}

func TestAuthService_LoginServerError(t *testing.T) {
	set, _ := newTestSet(t, http.StatusUnauthorized, `{"message":"Credenciales inválidas"}`)
	_, err := set.Auth.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Credenciales inválidas", api.UserMessage(err, ""))
}

func TestPatientService_CountActive(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"data":[{"id":1}],"current_page":1,"last_page":12,"per_page":1,"total":12}`)
	n, err := set.Patients.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "page=1&per_page=1&status=active", (*calls)[0].query)

	_, err = set.Patients.Create(context.Background(), model.NewPatient{Name: "  "})
	assert.Error(t, err)
	assert.Len(t, *calls, 1)
}

func TestSessionService_CreateValidatesStart(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"id":2,"status":"completed"}`)
	ctx := context.Background()

	_, err := set.Sessions.Create(ctx, model.NewSession{PatientID: 1, StartsAt: "mañana"})
	assert.Error(t, err)
	_, err = set.Sessions.Create(ctx, model.NewSession{StartsAt: "2025-03-01 10:00:00"})
	assert.Error(t, err)
	assert.Empty(t, *calls)

	s, err := set.Sessions.Complete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "completed", s.Status)
	assert.Equal(t, "/api/sessions/2/complete", (*calls)[0].path)
}

func TestPaymentAndContract_Validation(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{}`)
	ctx := context.Background()

	_, err := set.Payments.Create(ctx, model.NewPayment{PatientID: 1, Amount: 0})
	assert.Error(t, err)
	_, err = set.Contracts.Create(ctx, model.NewContract{PatientID: 1, Title: " "})
	assert.Error(t, err)
	_, err = set.Quizzes.Assign(ctx, model.NewQuizAssignment{PatientID: 1})
	assert.Error(t, err)
	assert.Empty(t, *calls)
}

func TestContractService_ResendAndListQuery(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"id":8,"status":"sent","data":[]}`)
	ctx := context.Background()

	c, err := set.Contracts.Resend(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "sent", c.Status)
	_, err = set.Contracts.List(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, "/api/contracts/8/resend", (*calls)[0].path)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.Equal(t, "patient_id=4", (*calls)[1].query)
}

func TestContractService_Sign(t *testing.T) {
	set, calls := newTestSet(t, http.StatusOK, `{"id":8,"status":"signed"}`)

	c, err := set.Contracts.Sign(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "signed", c.Status)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/contracts/8/sign", (*calls)[0].path)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
}

func TestPaymentService_ReceiptFallbackName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 receipt"))
	}))
	defer ts.Close()

	svc := NewPaymentService(api.NewClient(ts.URL, nil, nil))
	doc, err := svc.Receipt(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "recibo-12.pdf", doc.FileName)
	assert.Equal(t, "%PDF-1.4 receipt", string(doc.Data))
}
