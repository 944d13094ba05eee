package handler_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/violets/internal/auth"
	"github.com/sakif/violets/internal/handler"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository/sqlite"
	"github.com/sakif/violets/internal/service"
	"github.com/sakif/violets/web"
)

const testPassword = "saintpaulia"

type testApp struct {
	router    http.Handler
	cultivars *service.CultivarService
	tokens    *auth.TokenService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp wires real handlers over an in-memory database. withKeeper
// turns on the login routes.
func newTestApp(t *testing.T, withKeeper bool) *testApp {
	t.Helper()
	logger := discardLogger()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var tokens *auth.TokenService
	if withKeeper {
		tokens, err = auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
		require.NoError(t, err)
	}

	render, err := handler.NewRenderer(web.Templates, tokens, logger)
	require.NoError(t, err)

	cultivars := service.NewCultivarService(db, logger)
	ch := handler.NewCultivarHandler(cultivars, render, logger)
	bh := handler.NewBackupHandler(service.NewBackupService(db, logger), render, logger)

	r := chi.NewRouter()
	r.NotFound(render.NotFound)
	r.Get("/", ch.HandleList)
	r.Get("/cultivars/new", ch.HandleNewForm)
	r.Post("/cultivars/new", ch.HandleCreate)
	r.Get("/cultivars/{id}", ch.HandleShow)
	r.Get("/cultivars/{id}/edit", ch.HandleEditForm)
	r.Post("/cultivars/{id}/edit", ch.HandleUpdate)
	r.Get("/care_logs", ch.HandleCareHistory)
	r.Post("/cultivars/{id}/care", ch.HandleAddCare)
	r.Post("/cultivars/{id}/delete", ch.HandleDelete)
	r.Post("/care_logs/{id}/delete", ch.HandleDeleteCareLog)
	r.Get("/export", bh.HandleExport)
	r.Get("/export/care_logs.csv", bh.HandleCareCSV)
	r.Get("/import", bh.HandleImportForm)
	r.Post("/import", bh.HandleImport)

	if withKeeper {
		passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
		hash, err := passwords.Hash(testPassword)
		require.NoError(t, err)
		kh := handler.NewKeeperHandler(service.NewKeeperService(hash, passwords, tokens, logger), tokens, render, logger)
		r.Get("/login", kh.HandleLoginForm)
		r.Post("/login", kh.HandleLogin)
		r.Post("/logout", kh.HandleLogout)
	}

	return &testApp{router: r, cultivars: cultivars, tokens: tokens}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// upload posts a multipart form with fields and, unless filename is empty,
// a "snapshot" file part holding content.
func (a *testApp) upload(t *testing.T, path, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("snapshot", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func (a *testApp) createCultivar(t *testing.T, name string) *model.Cultivar {
	t.Helper()
	c, err := a.cultivars.Create(t.Context(), service.CultivarInput{Name: name})
	require.NoError(t, err)
	return c
}

func (a *testApp) addCare(t *testing.T, cultivarID, action, date string) *model.CareLog {
	t.Helper()
	l, err := a.cultivars.AddCareLog(t.Context(), cultivarID, service.CareLogInput{Action: action, PerformedOn: date})
	require.NoError(t, err)
	return l
}
