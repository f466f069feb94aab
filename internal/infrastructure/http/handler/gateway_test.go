package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
	"github.com/apascualco/campusgate/internal/infrastructure/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeForwarder struct {
	mu    sync.Mutex
	calls []domain.ForwardRequest
	raw   json.RawMessage
	err   error
}

func (f *fakeForwarder) Forward(_ context.Context, req domain.ForwardRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func (f *fakeForwarder) only(t *testing.T) domain.ForwardRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.calls, 1)
	return f.calls[0]
}

type fakeStream struct {
	service domain.ServiceName
	path    string
}

func (s *fakeStream) Handle(service domain.ServiceName, path forward.PathFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := path(c)
		if err != nil {
			abort(c, err)
			return
		}
		s.service, s.path = service, target
		c.Status(http.StatusOK)
	}
}

type fakeStudentProjects struct {
	studentID int64
	result    domain.ProjectsByPromotion
	err       error
}

func (f *fakeStudentProjects) FindProjectsForStudent(_ context.Context, studentID int64) (domain.ProjectsByPromotion, error) {
	f.studentID = studentID
	return f.result, f.err
}

type fakePromotions struct {
	created     domain.CreatePromotionRequest
	promotionID int64
	records     domain.StudentRecords
	query       url.Values
	withStudent []domain.PromotionWithStudents
	raw         json.RawMessage
	err         error
}

func (f *fakePromotions) Create(_ context.Context, req domain.CreatePromotionRequest) (json.RawMessage, error) {
	f.created = req
	return f.raw, f.err
}

func (f *fakePromotions) AddStudents(_ context.Context, promotionID int64, records domain.StudentRecords) (json.RawMessage, error) {
	f.promotionID, f.records = promotionID, records
	return f.raw, f.err
}

func (f *fakePromotions) Students(_ context.Context, promotionID int64, query url.Values) (json.RawMessage, error) {
	f.promotionID, f.query = promotionID, query
	return f.raw, f.err
}

func (f *fakePromotions) ListWithStudents(context.Context) ([]domain.PromotionWithStudents, error) {
	return f.withStudent, f.err
}

type fakeCalendar struct {
	query  domain.CalendarQuery
	result []domain.CalendarPromotion
}

func (f *fakeCalendar) Deliverables(_ context.Context, q domain.CalendarQuery) ([]domain.CalendarPromotion, error) {
	f.query = q
	return f.result, nil
}

type fakeOrders struct {
	presentationID int64
	input          domain.GenerateOrdersInput
	raw            json.RawMessage
}

func (f *fakeOrders) Generate(_ context.Context, presentationID int64, in domain.GenerateOrdersInput) (json.RawMessage, error) {
	f.presentationID, f.input = presentationID, in
	return f.raw, nil
}

type fixture struct {
	forwarder  *fakeForwarder
	stream     *fakeStream
	students   *fakeStudentProjects
	promotions *fakePromotions
	calendar   *fakeCalendar
	orders     *fakeOrders
	user       *domain.UserClaims
}

func newFixture() *fixture {
	return &fixture{
		forwarder:  &fakeForwarder{raw: json.RawMessage(`{"ok":true}`)},
		stream:     &fakeStream{},
		students:   &fakeStudentProjects{},
		promotions: &fakePromotions{raw: json.RawMessage(`{"id":1}`)},
		calendar:   &fakeCalendar{},
		orders:     &fakeOrders{raw: json.RawMessage(`{"created":2}`)},
	}
}

func (f *fixture) router() *gin.Engine {
	gateway := NewGateway(Dependencies{
		Forwarder:       f.forwarder,
		Stream:          f.stream,
		StudentProjects: f.students,
		Promotions:      f.promotions,
		Calendar:        f.calendar,
		Orders:          f.orders,
	})

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.ErrorEnvelope())
	router.Use(func(c *gin.Context) {
		if f.user != nil {
			c.Set(middleware.ContextKeyUser, f.user)
		}
		c.Next()
	})
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())
	gateway.Register(router, RouteOptions{RequireUser: middleware.RequireUser()})
	return router
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, req)
	return w
}

func envelopeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Code, body.StatusCode)
	return body.Error
}

func TestMyProjects_RequiresUser(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/projects/myprojects", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.forwarder.calls)
}

func TestMyProjects_ForwardsIdentity(t *testing.T) {
	f := newFixture()
	f.user = &domain.UserClaims{Subject: 7, Email: "t@school.io", Role: domain.RoleTeacher}

	w := f.do(http.MethodGet, "/projects/myprojects?size=20", "")

	require.Equal(t, http.StatusOK, w.Code)
	call := f.forwarder.only(t)
	assert.Equal(t, domain.ServiceProject, call.Service)
	assert.Equal(t, "/projects/myprojects", call.Path)
	assert.Equal(t, url.Values{
		"page":     {"1"},
		"size":     {"20"},
		"userId":   {"7"},
		"userRole": {"TEACHER"},
	}, call.Query)
	assert.JSONEq(t, `{"sub":7,"email":"t@school.io","role":"TEACHER"}`, call.Header.Get(HeaderUser))
}

func TestMyProjects_InvalidPage(t *testing.T) {
	f := newFixture()
	f.user = &domain.UserClaims{Subject: 7, Role: domain.RoleStudent}

	w := f.do(http.MethodGet, "/projects/myprojects?page=first", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `invalid page: must be an integer, got "first"`, envelopeError(t, w))
}

func TestStudentProjects_GroupsByPromotion(t *testing.T) {
	f := newFixture()
	f.students.result = domain.ProjectsByPromotion{{PromotionID: 5}, {PromotionID: 2}}

	w := f.do(http.MethodGet, "/projects/student/3", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), f.students.studentID)
	assert.Equal(t, `{"5":[],"2":[]}`, w.Body.String())
}

func TestStudentProjects_DownstreamErrorIsRelayed(t *testing.T) {
	f := newFixture()
	f.students.err = &domain.DownstreamError{
		Service:    domain.ServiceProject,
		StatusCode: http.StatusNotFound,
		Message:    "Student 3 not found",
	}

	w := f.do(http.MethodGet, "/projects/student/3", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "[project] Student 3 not found", envelopeError(t, w))
}

func TestCreatePromotion(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/promotions",
		`{"name":"P1","description":"first","students_csv":"Doe,John,j@x.io","creatorId":4}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
	assert.Equal(t, domain.CreatePromotionRequest{
		Name:        "P1",
		Description: "first",
		StudentsCSV: "Doe,John,j@x.io",
		CreatorID:   4,
	}, f.promotions.created)
}

func TestCreatePromotion_MissingField(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/promotions", `{"name":"P1","description":"first","creatorId":4}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid studentsCSV: is required", envelopeError(t, w))
}

func TestAddStudentsToPromotion(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/promotions/9/student",
		`[{"lastname":"Doe","firstname":"Jane","email":"jane@x.io"}]`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(9), f.promotions.promotionID)
	assert.Equal(t, domain.StudentRecords{{Lastname: "Doe", Firstname: "Jane", Email: "jane@x.io"}}, f.promotions.records)
}

func TestRemoveStudentsFromPromotion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[1, 2]`},
		{name: "wrapped", body: `{"studentIds":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			w := f.do(http.MethodDelete, "/promotions/4/student", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			call := f.forwarder.only(t)
			assert.Equal(t, http.MethodDelete, call.Method)
			assert.Equal(t, "/promotions/4/student", call.Path)
			assert.Equal(t, domain.StudentIDsRequest{StudentIDs: []int64{1, 2}}, call.Body)
		})
	}
}

func TestRemoveStudentsFromPromotion_InvalidBody(t *testing.T) {
	for _, body := range []string{"", `{"ids":[1]}`, `["a"]`} {
		f := newFixture()

		w := f.do(http.MethodDelete, "/promotions/4/student", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Empty(t, f.forwarder.calls)
	}
}

func TestPromotionStudents_PassesPaging(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/promotions/4/students?page=2&size=5&other=x", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), f.promotions.promotionID)
	assert.Equal(t, url.Values{"page": {"2"}, "size": {"5"}}, f.promotions.query)
}

func TestPromotionsWithStudents(t *testing.T) {
	f := newFixture()
	f.promotions.withStudent = []domain.PromotionWithStudents{
		{ID: 1, Name: "P1", Students: []domain.User{}},
	}

	w := f.do(http.MethodGet, "/promotions/with-students", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"P1","description":"","creatorId":0,"students":[]}]`, w.Body.String())
}

func TestCalendar_BuildsQuery(t *testing.T) {
	f := newFixture()
	f.calendar.result = []domain.CalendarPromotion{}

	w := f.do(http.MethodGet, "/calendar?promotionId=2&startDate=2024-01-01&endDate=2024-02-01", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	require.NotNil(t, f.calendar.query.PromotionID)
	assert.Equal(t, int64(2), *f.calendar.query.PromotionID)
	assert.Nil(t, f.calendar.query.ProjectID)
	assert.Equal(t, "2024-01-01", f.calendar.query.StartDate)
	assert.Equal(t, "2024-02-01", f.calendar.query.EndDate)
}

func TestCalendar_InvalidProjectID(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/calendar?projectId=abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `invalid projectId: must be an integer, got "abc"`, envelopeError(t, w))
}

func TestGenerateOrders(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/presentations/12/orders/generate", `{"algorithm":"RANDOM","shuffleSeed":4}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"created":2}`, w.Body.String())
	assert.Equal(t, int64(12), f.orders.presentationID)
	assert.Equal(t, domain.OrderAlgorithmRandom, f.orders.input.Algorithm)
	require.NotNil(t, f.orders.input.ShuffleSeed)
	assert.Equal(t, int64(4), *f.orders.input.ShuffleSeed)
}

func TestGenerateOrders_WithoutBody(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/presentations/12/orders/generate", "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.GenerateOrdersInput{}, f.orders.input)
}

func TestStreamedRoutes(t *testing.T) {
	tests := []struct {
		method string
		target string
		path   string
	}{
		{http.MethodPost, "/deliverables/4/submit", "/deliverables/4/submit"},
		{http.MethodGet, "/submissions/2/download", "/submissions/2/download"},
		{http.MethodPost, "/documents/upload", "/documents/upload"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			f := newFixture()

			w := f.do(tt.method, tt.target, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, domain.ServiceFiles, f.stream.service)
			assert.Equal(t, tt.path, f.stream.path)
			assert.Empty(t, f.forwarder.calls)
		})
	}
}

func TestDashboardStatistics_RequiresUserAndRole(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/dashboard/statistics?userId=1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userId and userRole are required query parameters.", envelopeError(t, w))
	assert.Empty(t, f.forwarder.calls)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/nothing/here", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.forwarder.calls)
}
