package reading_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aguacoop/aguacoop/internal/auth"
	readingHandler "github.com/aguacoop/aguacoop/internal/http/reading"
	"github.com/aguacoop/aguacoop/internal/importer"
	"github.com/aguacoop/aguacoop/internal/reading"
	"github.com/aguacoop/aguacoop/internal/tariff"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	repo       *reading.MockRepository
	rtx        *reading.MockRegistrationTx
	categories *reading.MockCategories
	router     chi.Router

	meter   *reading.Meter
	reading *reading.Reading
}

func newFixture(t *testing.T, role auth.Role) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:       reading.NewMockRepository(ctrl),
		rtx:        reading.NewMockRegistrationTx(ctrl),
		categories: reading.NewMockCategories(ctrl),
	}

	svc := reading.NewService(f.repo, f.categories)
	h := readingHandler.NewHandler(svc, importer.NewService(svc))

	id := auth.Identity{OperatorID: uuid.New(), Role: role}

	f.router = chi.NewRouter()
	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	})
	h.Routes(f.router)

	f.meter = &reading.Meter{ID: uuid.New(), MemberName: "Rosa Quispe", CategoryID: uuid.New()}
	f.reading = &reading.Reading{
		ID:         uuid.New(),
		MeterID:    f.meter.ID,
		PriorValue: dec("100"),
		Status:     reading.StatusPending,
	}

	return f
}

func (f *fixture) expectRegistration() {
	f.repo.EXPECT().GetReading(gomock.Any(), f.reading.ID).Return(f.reading, nil)
	f.repo.EXPECT().GetMeter(gomock.Any(), f.meter.ID).Return(f.meter, nil)
	f.categories.EXPECT().Get(gomock.Any(), f.meter.CategoryID).Return(&tariff.Category{
		ID:             f.meter.CategoryID,
		Name:           "Domiciliaria",
		BasicAllowance: dec("10"),
		BaseRate:       dec("50"),
		ExcessRate:     dec("5"),
	}, nil)
	f.repo.EXPECT().BeginRegistration(gomock.Any()).Return(f.rtx, nil)
	f.rtx.EXPECT().Rollback().Return(nil)
	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(nil, nil)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, uuid.Nil).Return(0, nil)
	f.rtx.EXPECT().CreateVoucher(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *voucher.Voucher) error {
			v.ID = uuid.New()
			return nil
		})
	f.rtx.EXPECT().Commit().Return(nil)
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	return rec
}

func registerRequest(readingID uuid.UUID, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/"+readingID.String()+"/register", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	return r
}

func TestHandler_Register(t *testing.T) {
	f := newFixture(t, auth.RoleOperator)
	f.expectRegistration()

	rec := f.do(registerRequest(f.reading.ID,
		`{"meter_id":"`+f.meter.ID.String()+`","prior_value":"100","current_value":"114","note":"ok"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Created bool `json:"created"`
		Reading struct {
			Consumption string `json:"consumption"`
			Status      string `json:"status"`
		} `json:"reading"`
		Voucher struct {
			TotalDue string `json:"total_due"`
			Status   string `json:"payment_status"`
		} `json:"voucher"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Created)
	assert.Equal(t, "14", body.Reading.Consumption)
	assert.Equal(t, "REGISTERED", body.Reading.Status)
	assert.Equal(t, "70", body.Voucher.TotalDue)
	assert.Equal(t, "PENDING", body.Voucher.Status)
}

func TestHandler_Register_LowerReadingRejected(t *testing.T) {
	f := newFixture(t, auth.RoleOperator)

	rec := f.do(registerRequest(f.reading.ID,
		`{"meter_id":"`+f.meter.ID.String()+`","prior_value":100,"current_value":90}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "current reading cannot be lower than the prior reading")
}

func TestHandler_Register_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing current value", `{"meter_id":"` + uuid.NewString() + `","prior_value":"1"}`, "current_value is required"},
		{"missing meter", `{"prior_value":"1","current_value":"2"}`, "meter_id is required"},
		{"malformed", `{"meter_id":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, auth.RoleAdmin)

			rec := f.do(registerRequest(f.reading.ID, tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestHandler_Register_CashierForbidden(t *testing.T) {
	f := newFixture(t, auth.RoleCashier)

	rec := f.do(registerRequest(f.reading.ID, `{}`))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Consumption_UnknownMeter(t *testing.T) {
	f := newFixture(t, auth.RoleCashier)

	meterID := uuid.New()
	f.repo.EXPECT().GetMeter(gomock.Any(), meterID).Return(nil, reading.ErrMeterNotFound)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/meters/"+meterID.String()+"/consumption", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"not_found"`)
}

func TestHandler_History_InvalidDate(t *testing.T) {
	f := newFixture(t, auth.RoleCashier)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/history?start_date=03/2024", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ImportSheet(t *testing.T) {
	f := newFixture(t, auth.RoleOperator)

	f.repo.EXPECT().ListRolloverCandidates(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.repo.EXPECT().FindForPeriod(gomock.Any(), f.meter.ID, gomock.Any()).Return(f.reading, nil)
	f.expectRegistration()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "planilla.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("meter_id,current_reading,note\n" +
		f.meter.ID.String() + ",114,\n" +
		"not-a-meter,5,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/import", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	rec := f.do(r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Profile    string `json:"profile"`
		Registered int    `json:"registered"`
		Failed     int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "export", body.Profile)
	assert.Equal(t, 1, body.Registered)
	assert.Equal(t, 1, body.Failed)
}
