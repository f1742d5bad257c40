package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medik/hospital-api/internal/middleware"
	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository/memory"
	appointmentsvc "github.com/medik/hospital-api/internal/service/appointment"
	"github.com/medik/hospital-api/internal/service/auth"
	"github.com/medik/hospital-api/pkg/validator"
)

const testSecret = "test-secret"

type testServer struct {
	engine  *gin.Engine
	users   *memory.UserRepository
	patient *model.User
	doctor  *model.User
	staff   *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterBindings())

	users := memory.NewUserRepository()
	repo := memory.NewAppointmentRepository(users)

	patient := &model.User{
		Base:      model.Base{ID: uuid.New()},
		Email:     "ivanov@example.com",
		FirstName: "Иван",
		LastName:  "Иванов",
		Roles:     []model.Role{model.RolePatient},
	}
	doctor := &model.User{
		Base:      model.Base{ID: uuid.New()},
		Email:     "petrova@example.com",
		FirstName: "Анна",
		LastName:  "Петрова",
		Roles:     []model.Role{model.RoleDoctor},
	}
	staff := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "staff@example.com",
		Roles: []model.Role{model.RoleStaff},
	}
	users.Add(patient)
	users.Add(doctor)
	users.Add(staff)

	svc := appointmentsvc.NewService(repo, users, nil, nil)
	authSvc := auth.NewService(users, auth.Config{Secret: testSecret})
	authMW := middleware.NewAuthMiddleware(authSvc)
	h := NewHandler(svc, authMW)

	engine := gin.New()
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := engine.Group("/api/v1", authMW.Authenticate())
	h.RegisterRoutes(api)

	return &testServer{engine: engine, users: users, patient: patient, doctor: doctor, staff: staff}
}

func (s *testServer) token(t *testing.T, u *model.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, actor *model.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token(t, actor))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) book(t *testing.T, start time.Time) uuid.UUID {
	t.Helper()
	w := s.do(t, s.patient, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": start,
		"complaint":  "Головная боль",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestCreateAppointment(t *testing.T) {
	s := newTestServer(t)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute).UTC()
	w := s.do(t, s.patient, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": start,
		"complaint":  "Головная боль",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Запись успешно создана.")

	var resp struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, start.Add(30*time.Minute), resp.Data.EndTime.UTC())
}

func TestCreateAppointmentPastTime(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.patient, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": time.Now().Add(-time.Hour),
		"complaint":  "Головная боль",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateAppointmentDoctorBusy(t *testing.T) {
	s := newTestServer(t)

	start := time.Now().Add(24 * time.Hour)
	s.book(t, start)

	second := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "smirnov@example.com",
		Roles: []model.Role{model.RolePatient},
	}
	s.users.Add(second)

	w := s.do(t, second, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": start.Add(15 * time.Minute),
		"complaint":  "Кашель",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestCreateAppointmentLatinComplaint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.patient, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": time.Now().Add(24 * time.Hour),
		"complaint":  "headache",
	})

	// cyrillictext binding rejects before the service is reached
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointmentRoleGate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.doctor, http.MethodPost, "/api/v1/appointments", gin.H{
		"doctor_id":  s.doctor.ID,
		"start_time": time.Now().Add(24 * time.Hour),
		"complaint":  "Головная боль",
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRespondFlow(t *testing.T) {
	s := newTestServer(t)

	id := s.book(t, time.Now().Add(24*time.Hour))

	w := s.do(t, s.doctor, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/readings", id), gin.H{
		"readings": "Принимать парацетамол",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Ответ сохранён.")

	// The record leaves the doctor's inbox.
	w = s.do(t, s.doctor, http.MethodGet, "/api/v1/appointments/inbox", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		Data []*model.AppointmentSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	assert.Empty(t, inbox.Data)

	// And shows up in the patient's history.
	w = s.do(t, s.patient, http.MethodGet, "/api/v1/appointments/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []*model.AppointmentSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Data, 1)
	assert.Equal(t, "Принимать парацетамол", history.Data[0].Readings)
}

func TestRespondByUnassignedDoctor(t *testing.T) {
	s := newTestServer(t)

	id := s.book(t, time.Now().Add(24*time.Hour))

	other := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "other@example.com",
		Roles: []model.Role{model.RoleDoctor},
	}
	s.users.Add(other)

	w := s.do(t, other, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/readings", id), gin.H{
		"readings": "Ответ",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUnknownAppointment(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, s.doctor, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListFilters(t *testing.T) {
	s := newTestServer(t)

	id := s.book(t, time.Now().Add(24*time.Hour))
	s.book(t, time.Now().Add(48*time.Hour))

	w := s.do(t, s.doctor, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/readings", id), gin.H{
		"readings": "Ответ готов",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, s.staff, http.MethodGet, "/api/v1/admin/appointments?answered=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data []*model.AppointmentSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, id, resp.Data[0].ID)
}

func TestAdminCreateEndBeforeStart(t *testing.T) {
	s := newTestServer(t)

	start := time.Now().Add(24 * time.Hour)
	w := s.do(t, s.staff, http.MethodPost, "/api/v1/admin/appointments", gin.H{
		"patient_id": s.patient.ID,
		"doctor_id":  s.doctor.ID,
		"start_time": start,
		"end_time":   start.Add(-time.Hour),
		"complaint":  "Осмотр",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "end time precedes start time")
}

func TestAdminDeleteRequiresStaff(t *testing.T) {
	s := newTestServer(t)

	id := s.book(t, time.Now().Add(24*time.Hour))

	w := s.do(t, s.doctor, http.MethodDelete, "/api/v1/admin/appointments/"+id.String(), nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = s.do(t, s.staff, http.MethodDelete, "/api/v1/admin/appointments/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
