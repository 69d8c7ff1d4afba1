package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/courtside/booking-platform/internal/model"
	"github.com/courtside/booking-platform/internal/repository"
	"github.com/courtside/booking-platform/internal/service"
)

func setupRouter(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// У in-memory sqlite своя база на каждое соединение пула.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.AutoMigrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	courts := repository.NewGormCourtRepository(db)
	slots := repository.NewGormSlotRepository(db)
	bookings := repository.NewGormBookingRepository(db)
	events := repository.NewGormEventRepository(db)

	slotSvc := service.NewSlotService(courts, slots, events, log, 30)
	bookingSvc := service.NewBookingService(courts, bookings, events, log, 2*time.Hour)

	r := gin.New()
	Routes(r, New(slotSvc, bookingSvc, log))
	return db, r
}

// Ближайший понедельник не раньше чем через неделю: тесты ходят
// через реальные часы сервисов, даты должны лежать в будущем.
func upcomingMonday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func seedCourt(t *testing.T, db *gorm.DB, monday time.Time) *model.Court {
	t.Helper()
	blackout := monday.AddDate(0, 0, 7).Format("2006-01-02")
	court := &model.Court{
		VenueID:            uuid.New(),
		OwnerID:            uuid.New(),
		Name:               "Center Court",
		HourlyRate:         25,
		BookingDurationMin: 60,
		Status:             model.CourtStatusActive,
		WeeklyHours:        datatypes.JSON(`{"monday": {"open": "06:00", "close": "10:00"}}`),
		BlackoutDates:      datatypes.JSON(fmt.Sprintf(`["%s"]`, blackout)),
	}
	require.NoError(t, db.Create(court).Error)
	return court
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-User-Id", userID.String())
		req.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Availability(t *testing.T) {
	db, r := setupRouter(t)
	monday := upcomingMonday()
	court := seedCourt(t, db, monday)

	from := monday.Format("2006-01-02")
	to := monday.AddDate(0, 0, 7).Format("2006-01-02")
	path := fmt.Sprintf("/v1/courts/%s/availability?from=%s&to=%s", court.ID, from, to)

	w := doJSON(t, r, http.MethodGet, path, nil, uuid.New(), "client")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days []struct {
			Date      string `json:"date"`
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 8)

	assert.True(t, resp.Days[0].Available)

	// Последний день диапазона внесён в blackout.
	last := resp.Days[len(resp.Days)-1]
	assert.False(t, last.Available)
	assert.Equal(t, "blackout", last.Reason)
}

func TestHandler_MissingIdentity(t *testing.T) {
	db, r := setupRouter(t)
	court := seedCourt(t, db, upcomingMonday())

	path := fmt.Sprintf("/v1/courts/%s/availability", court.ID)
	w := doJSON(t, r, http.MethodGet, path, nil, uuid.Nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GenerateForbiddenForStranger(t *testing.T) {
	db, r := setupRouter(t)
	monday := upcomingMonday()
	court := seedCourt(t, db, monday)

	body := gin.H{"from": monday.Format("2006-01-02"), "to": monday.Format("2006-01-02")}
	path := fmt.Sprintf("/v1/courts/%s/slots/generate", court.ID)

	// Менеджер, не владеющий кортом.
	w := doJSON(t, r, http.MethodPost, path, body, uuid.New(), "manager")
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp["error"])
}

func TestHandler_BookingFlow(t *testing.T) {
	db, r := setupRouter(t)
	monday := upcomingMonday()
	court := seedCourt(t, db, monday)

	genBody := gin.H{"from": monday.Format("2006-01-02"), "to": monday.Format("2006-01-02")}
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/v1/courts/%s/slots/generate", court.ID), genBody, court.OwnerID, "manager")
	require.Equal(t, http.StatusCreated, w.Code)

	claim := gin.H{
		"court_id":  court.ID.String(),
		"starts_at": monday.Add(6 * time.Hour).Format(time.RFC3339),
		"ends_at":   monday.Add(7 * time.Hour).Format(time.RFC3339),
	}

	w = doJSON(t, r, http.MethodPost, "/v1/bookings", claim, uuid.New(), "client")
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		BookingID uuid.UUID `json:"booking_id"`
		Status    string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "confirmed", created.Status)

	// Тот же интервал вторым клиентом: конфликт.
	w = doJSON(t, r, http.MethodPost, "/v1/bookings", claim, uuid.New(), "client")
	require.Equal(t, http.StatusConflict, w.Code)

	var conflict map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	assert.Equal(t, "conflict", conflict["error"])

	// Отмена создателем: слот освобождается, возврат положен.
	var booking model.Booking
	require.NoError(t, db.First(&booking, "id = ?", created.BookingID).Error)

	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/v1/bookings/%s/cancel", created.BookingID),
		gin.H{"reason": "sick"}, booking.UserID, "client")
	require.Equal(t, http.StatusOK, w.Code)

	var cancelled struct {
		Status         string `json:"status"`
		RefundEligible bool   `json:"refund_eligible"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.True(t, cancelled.RefundEligible)
}

func TestHandler_ListSlotsPagination(t *testing.T) {
	db, r := setupRouter(t)
	monday := upcomingMonday()
	court := seedCourt(t, db, monday)

	genBody := gin.H{"from": monday.Format("2006-01-02"), "to": monday.Format("2006-01-02")}
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/v1/courts/%s/slots/generate", court.ID), genBody, court.OwnerID, "manager")
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/v1/courts/%s/slots?from=%s&to=%s&page=1&page_size=3",
		court.ID, monday.Format("2006-01-02"), monday.Format("2006-01-02"))
	w = doJSON(t, r, http.MethodGet, path, nil, uuid.New(), "client")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Slots   []json.RawMessage `json:"slots"`
		Total   int64             `json:"total"`
		HasNext bool              `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Slots, 3)
	assert.EqualValues(t, 4, resp.Total)
	assert.True(t, resp.HasNext)
}

func TestHandler_MalformedDates(t *testing.T) {
	db, r := setupRouter(t)
	court := seedCourt(t, db, upcomingMonday())

	path := fmt.Sprintf("/v1/courts/%s/availability?from=13-03-2025", court.ID)
	w := doJSON(t, r, http.MethodGet, path, nil, uuid.New(), "client")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
