package handler_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/violets/internal/service"
)

func TestHandleList(t *testing.T) {
	t.Run("empty journal", func(t *testing.T) {
		app := newTestApp(t, false)

		rr := app.get("/")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "No cultivars yet")
	})

	t.Run("latest care per cultivar", func(t *testing.T) {
		app := newTestApp(t, false)
		cared := app.createCultivar(t, "Ma's Bernice")
		app.createCultivar(t, "Rob's Dandy Lion")
		app.addCare(t, cared.ID, "Watered", "2024-01-05")
		app.addCare(t, cared.ID, "Fed", "2024-02-10")
		app.addCare(t, cared.ID, "Repotted", "2023-12-01")

		body := app.get("/").Body.String()

		assert.Contains(t, body, "2024-02-10")
		assert.NotContains(t, body, "2024-01-05")
		assert.Contains(t, body, `<td class="latest-care">&mdash;</td>`)
		assert.Less(t, strings.Index(body, "Bernice"), strings.Index(body, "Dandy Lion"))
	})

	t.Run("query filters by name", func(t *testing.T) {
		app := newTestApp(t, false)
		app.createCultivar(t, "Optimara Little Moon")
		app.createCultivar(t, "Buckeye Cranberry Sparkler")

		body := app.get("/?q=moon").Body.String()

		assert.Contains(t, body, "Little Moon")
		assert.NotContains(t, body, "Cranberry")
	})

	t.Run("query with no matches", func(t *testing.T) {
		app := newTestApp(t, false)
		app.createCultivar(t, "Optimara Little Moon")

		body := app.get("/?q=zzz").Body.String()

		assert.Contains(t, body, "No cultivars match")
	})
}

func TestHandleNewForm(t *testing.T) {
	app := newTestApp(t, false)

	rr := app.get("/cultivars/new")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="acquisition_date"`)
}

func TestHandleCreate(t *testing.T) {
	t.Run("valid form redirects to list", func(t *testing.T) {
		app := newTestApp(t, false)

		rr := app.post("/cultivars/new", url.Values{
			"name":             {"African Violet #1"},
			"flower_color":     {"Purple"},
			"acquisition_date": {"2023-06-01"},
		})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		assert.Contains(t, app.get("/").Body.String(), "African Violet #1")
	})

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantText   string
	}{
		{
			name:       "blank name",
			form:       url.Values{"name": {"   "}, "flower_color": {"Purple"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "Cultivar name is required.",
		},
		{
			name:       "malformed date",
			form:       url.Values{"name": {"Sunset"}, "flower_color": {"Purple"}, "acquisition_date": {"June 1st"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "is not a valid date",
		},
		{
			name:       "duplicate name",
			form:       url.Values{"name": {"Existing"}, "flower_color": {"Purple"}},
			wantStatus: http.StatusConflict,
			wantText:   "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, false)
			app.createCultivar(t, "Existing")

			rr := app.post("/cultivars/new", tt.form)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, tt.wantText)
			// The other fields survive the round trip.
			assert.Contains(t, body, `value="Purple"`)
		})
	}
}

func TestHandleEditForm(t *testing.T) {
	t.Run("prefilled with stored values", func(t *testing.T) {
		app := newTestApp(t, false)
		c, err := app.cultivars.Create(t.Context(), service.CultivarInput{
			Name:            "Rhapsodie Gigi",
			SoilMix:         "Peat and perlite",
			AcquisitionDate: "2023-06-01",
		})
		require.NoError(t, err)

		rr := app.get("/cultivars/" + c.ID + "/edit")

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `action="/cultivars/`+c.ID+`/edit"`)
		assert.Contains(t, body, `value="Rhapsodie Gigi"`)
		assert.Contains(t, body, `value="Peat and perlite"`)
		assert.Contains(t, body, `value="2023-06-01"`)
	})

	t.Run("unknown cultivar", func(t *testing.T) {
		app := newTestApp(t, false)

		assert.Equal(t, http.StatusNotFound, app.get("/cultivars/missing/edit").Code)
	})
}

func TestHandleUpdate(t *testing.T) {
	t.Run("valid form redirects to detail", func(t *testing.T) {
		app := newTestApp(t, false)
		c := app.createCultivar(t, "Before")
		app.addCare(t, c.ID, "Watered", "2024-01-05")

		rr := app.post("/cultivars/"+c.ID+"/edit", url.Values{
			"name":        {"After"},
			"light_level": {"East window"},
		})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/cultivars/"+c.ID, rr.Header().Get("Location"))

		body := app.get("/cultivars/" + c.ID).Body.String()
		assert.Contains(t, body, "After")
		assert.Contains(t, body, "East window")
		assert.Contains(t, body, "2024-01-05", "care logs survive an edit")
	})

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantText   string
	}{
		{
			name:       "blank name",
			form:       url.Values{"name": {"  "}, "flower_color": {"Purple"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "Cultivar name is required.",
		},
		{
			name:       "malformed date",
			form:       url.Values{"name": {"Mine"}, "flower_color": {"Purple"}, "acquisition_date": {"June 1st"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "is not a valid date",
		},
		{
			name:       "name of another cultivar",
			form:       url.Values{"name": {"Existing"}, "flower_color": {"Purple"}},
			wantStatus: http.StatusConflict,
			wantText:   "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, false)
			app.createCultivar(t, "Existing")
			mine := app.createCultivar(t, "Mine")

			rr := app.post("/cultivars/"+mine.ID+"/edit", tt.form)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, tt.wantText)
			assert.Contains(t, body, `value="Purple"`)
			assert.Contains(t, body, `action="/cultivars/`+mine.ID+`/edit"`)
		})
	}

	t.Run("unknown cultivar", func(t *testing.T) {
		app := newTestApp(t, false)

		rr := app.post("/cultivars/missing/edit", url.Values{"name": {"Ghost"}})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleCareHistory(t *testing.T) {
	newHistoryApp := func(t *testing.T) (*testApp, string) {
		app := newTestApp(t, false)
		gigi := app.createCultivar(t, "Rhapsodie Gigi")
		moon := app.createCultivar(t, "Little Moon")
		app.addCare(t, gigi.ID, "Watered", "2024-01-05")
		app.addCare(t, gigi.ID, "Repotted", "2024-02-10")
		app.addCare(t, moon.ID, "Watered", "2024-03-15")
		return app, gigi.ID
	}

	t.Run("all entries newest first", func(t *testing.T) {
		app, _ := newHistoryApp(t)

		rr := app.get("/care_logs")

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Less(t, strings.Index(body, "2024-03-15"), strings.Index(body, "2024-02-10"))
		assert.Less(t, strings.Index(body, "2024-02-10"), strings.Index(body, "2024-01-05"))
		assert.Contains(t, body, `<option value="Repotted">Repotted</option>`)
	})

	t.Run("filters combine", func(t *testing.T) {
		app, gigi := newHistoryApp(t)

		body := app.get("/care_logs?cultivar=" + gigi + "&action=Watered").Body.String()

		assert.Contains(t, body, "2024-01-05")
		assert.NotContains(t, body, "2024-02-10")
		assert.NotContains(t, body, "2024-03-15")
		assert.Contains(t, body, `value="`+gigi+`" selected="selected"`)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		app, _ := newHistoryApp(t)

		body := app.get("/care_logs?from=2024-02-10&to=2024-03-15").Body.String()

		assert.Contains(t, body, "2024-02-10")
		assert.Contains(t, body, "2024-03-15")
		assert.NotContains(t, body, "<td>2024-01-05</td>")
	})

	t.Run("nothing matches", func(t *testing.T) {
		app, _ := newHistoryApp(t)

		body := app.get("/care_logs?action=Misted").Body.String()

		assert.Contains(t, body, "No care entries match the filters.")
	})

	t.Run("malformed date", func(t *testing.T) {
		app, _ := newHistoryApp(t)

		rr := app.get("/care_logs?from=soon")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "is not a valid date")
	})
}

func TestHandleShow(t *testing.T) {
	t.Run("renders cultivar and logs", func(t *testing.T) {
		app := newTestApp(t, false)
		c := app.createCultivar(t, "Rhapsodie Gigi")
		app.addCare(t, c.ID, "Watered", "2024-01-05")

		rr := app.get("/cultivars/" + c.ID)

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Rhapsodie Gigi")
		assert.Contains(t, body, "Watered")
		assert.Contains(t, body, "2024-01-05")
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		app := newTestApp(t, false)

		rr := app.get("/cultivars/does-not-exist")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "not found")
	})
}

func TestHandleAddCare(t *testing.T) {
	t.Run("redirects to detail", func(t *testing.T) {
		app := newTestApp(t, false)
		c := app.createCultivar(t, "Rhapsodie Gigi")

		rr := app.post("/cultivars/"+c.ID+"/care", url.Values{
			"action":       {"Fertilized"},
			"notes":        {"quarter strength"},
			"performed_on": {"2024-03-01"},
		})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/cultivars/"+c.ID, rr.Header().Get("Location"))

		body := app.get("/cultivars/" + c.ID).Body.String()
		assert.Contains(t, body, "Fertilized")
		assert.Contains(t, body, "quarter strength")
	})

	t.Run("blank action defaults to Care", func(t *testing.T) {
		app := newTestApp(t, false)
		c := app.createCultivar(t, "Rhapsodie Gigi")

		rr := app.post("/cultivars/"+c.ID+"/care", url.Values{"performed_on": {"2024-03-01"}})
		require.Equal(t, http.StatusSeeOther, rr.Code)

		assert.Contains(t, app.get("/cultivars/"+c.ID).Body.String(), "<td>Care</td>")
	})

	t.Run("malformed date re-renders detail", func(t *testing.T) {
		app := newTestApp(t, false)
		c := app.createCultivar(t, "Rhapsodie Gigi")

		rr := app.post("/cultivars/"+c.ID+"/care", url.Values{
			"action":       {"Watered"},
			"performed_on": {"yesterday"},
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "is not a valid date")
		assert.Contains(t, body, `value="Watered"`)
		assert.Contains(t, body, "No care logged yet.")
	})

	t.Run("unknown cultivar is 404", func(t *testing.T) {
		app := newTestApp(t, false)

		rr := app.post("/cultivars/missing/care", url.Values{"action": {"Watered"}})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleDelete(t *testing.T) {
	app := newTestApp(t, false)
	c := app.createCultivar(t, "Short-lived")
	app.addCare(t, c.ID, "Watered", "2024-01-05")

	rr := app.post("/cultivars/"+c.ID+"/delete", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, http.StatusNotFound, app.get("/cultivars/"+c.ID).Code)
	assert.Equal(t, http.StatusNotFound, app.post("/cultivars/"+c.ID+"/delete", nil).Code)
}

func TestHandleDeleteCareLog(t *testing.T) {
	app := newTestApp(t, false)
	c := app.createCultivar(t, "Rhapsodie Gigi")
	keep := app.addCare(t, c.ID, "Watered", "2024-01-05")
	drop := app.addCare(t, c.ID, "Misted", "2024-01-06")

	rr := app.post("/care_logs/"+drop.ID+"/delete", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/cultivars/"+c.ID, rr.Header().Get("Location"))

	body := app.get("/cultivars/" + c.ID).Body.String()
	assert.NotContains(t, body, "Misted")
	assert.Contains(t, body, keep.Action)

	assert.Equal(t, http.StatusNotFound, app.post("/care_logs/"+drop.ID+"/delete", nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, false)

	rr := app.get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "There is nothing at /no/such/page.")
}
