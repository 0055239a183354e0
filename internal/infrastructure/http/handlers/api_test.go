package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/nutrismart/planner/internal/application/ai"
	authapp "github.com/nutrismart/planner/internal/application/auth"
	"github.com/nutrismart/planner/internal/application/chat"
	"github.com/nutrismart/planner/internal/application/grocery"
	"github.com/nutrismart/planner/internal/application/planner"
	"github.com/nutrismart/planner/internal/application/profile"
	"github.com/nutrismart/planner/internal/application/progress"
	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/application/suggestions"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/domain/user"
	"github.com/nutrismart/planner/internal/infrastructure/http/middleware"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/memory"
	"github.com/nutrismart/planner/internal/infrastructure/security"
	"github.com/nutrismart/planner/internal/ports/inbound"
	"github.com/nutrismart/planner/internal/ports/outbound"
	"github.com/nutrismart/planner/test/testutils"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

const weeklyPlanJSON = `{
  "days": [
    {"day": "Monday", "meals": [{"type": "Lunch", "items": [{"name": "Dal", "description": "Cook 1 cup lentils"}]}]},
    {"day": "Wednesday", "meals": [{"type": "Dinner", "items": [{"name": "Paneer (200g)"}]}]}
  ]
}`

var googleUser = user.Info{Email: "cook@example.com", Name: "Home Cook"}

type countingMetrics struct {
	mu       sync.Mutex
	plans    []string
	grocery  int
	chat     int
	progress int
}

func (m *countingMetrics) PlanGenerated(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, mode)
}

func (m *countingMetrics) GroceryItemsExtracted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grocery += n
}

func (m *countingMetrics) ChatMessageAnswered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat++
}

func (m *countingMetrics) ProgressRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress++
}

type envelope struct {
	Success bool                    `json:"success"`
	Data    json.RawMessage         `json:"data"`
	Error   *apperrors.ErrorDetails `json:"error"`
	Message string                  `json:"message"`
}

// APITestSuite drives the handlers through a chi router over real services
// backed by an in-memory store and a mocked model client
type APITestSuite struct {
	suite.Suite
	client   *testutils.MockModelClient
	identity *testutils.MockIdentityProvider
	metrics  *countingMetrics
	profiles *profile.Service
	router   chi.Router
}

func (s *APITestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	docs := storage.NewDocuments(memory.NewStore(), logger)
	validation := security.NewValidationService(logger)

	s.client = testutils.NewMockModelClient()
	s.identity = &testutils.MockIdentityProvider{}
	s.metrics = &countingMetrics{}

	gateway := ai.NewGateway(s.client, logger)
	s.profiles = profile.NewService(docs, validation, logger)
	plans := planner.NewService(docs, s.profiles, gateway, logger)
	groceries := grocery.NewService(docs, plans, logger)
	tracker := progress.NewService(docs, s.profiles, validation, logger)
	advisor := suggestions.NewService(s.profiles, gateway, logger)
	coach := chat.NewService(docs, s.profiles, gateway, validation, logger)

	tokens, err := security.NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	s.Require().NoError(err)
	var auth inbound.AuthService = authapp.NewService(s.identity, tokens, logger)

	profileH := NewProfileHandlers(s.profiles, validation, logger)
	planH := NewPlanHandlers(plans, groceries, validation, s.metrics, logger)
	groceryH := NewGroceryHandlers(groceries, validation, logger)
	progressH := NewProgressHandlers(tracker, s.metrics, logger)
	suggestionH := NewSuggestionHandlers(advisor, validation, logger)
	chatH := NewChatHandlers(coach, validation, s.metrics, logger)
	authH := NewAuthHandlers(auth, validation, logger)

	r := chi.NewRouter()
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", profileH.List)
		r.Post("/", profileH.Create)
		r.Get("/active", profileH.Active)
		r.Put("/active", profileH.SetActive)
		r.Get("/{id}", profileH.Get)
		r.Put("/{id}", profileH.Update)
		r.Delete("/{id}", profileH.Delete)
		r.Get("/{id}/progress", progressH.History)
		r.Put("/{id}/progress", progressH.Record)
		r.Get("/{id}/progress/summary", progressH.Summary)
		r.Delete("/{id}/progress/{date}", progressH.Remove)
	})
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", planH.List)
		r.Post("/", planH.Generate)
		r.Get("/{userId}", planH.Get)
		r.Delete("/{userId}", planH.Delete)
		r.Post("/{userId}/grocery", planH.GroceryList)
	})
	r.Route("/grocery", func(r chi.Router) {
		r.Get("/", groceryH.List)
		r.Post("/", groceryH.Add)
		r.Delete("/", groceryH.Clear)
		r.Patch("/{id}/toggle", groceryH.Toggle)
		r.Delete("/{id}", groceryH.Remove)
	})
	r.Route("/suggestions", func(r chi.Router) {
		r.Get("/protein", suggestionH.ProteinSources)
		r.Get("/baby-food", suggestionH.BabyFood)
		r.Post("/ingredients", suggestionH.MealIdeas)
	})
	r.Route("/chat/messages", func(r chi.Router) {
		r.Get("/", chatH.Messages)
		r.Post("/", chatH.Send)
		r.Delete("/", chatH.Clear)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", authH.Google)
		r.Post("/logout", authH.Logout)
		r.With(middleware.RequireSession(auth, logger)).Get("/me", authH.Me)
	})
	s.router = r
}

func (s *APITestSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
	s.identity.AssertExpectations(s.T())
}

func (s *APITestSuite) do(method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (s *APITestSuite) data(env envelope, target interface{}) {
	s.Require().NoError(json.Unmarshal(env.Data, target))
}

func (s *APITestSuite) activeProfile() nutrition.UserProfile {
	active, err := s.profiles.ActiveProfile(context.Background())
	s.Require().NoError(err)
	return *active
}

func (s *APITestSuite) TestProfiles() {
	s.Run("FirstLoad_ShouldSeedDefaultProfile", func() {
		rec, env := s.do(http.MethodGet, "/profiles", nil)

		s.Equal(http.StatusOK, rec.Code)
		var profiles []nutrition.UserProfile
		s.data(env, &profiles)
		s.Require().Len(profiles, 1)
		s.Equal(nutrition.DefaultProfileName, profiles[0].Name)
	})

	s.Run("Create_ShouldReturnCreated", func() {
		body := testutils.NewProfileBuilder().WithName("Asha").Build()
		rec, env := s.do(http.MethodPost, "/profiles", body)

		s.Equal(http.StatusCreated, rec.Code)
		var created nutrition.UserProfile
		s.data(env, &created)
		s.NotEmpty(created.ID)
		s.Equal("Asha", created.Name)

		rec, env = s.do(http.MethodPut, "/profiles/active", SetActiveRequest{ProfileID: created.ID})
		s.Equal(http.StatusOK, rec.Code)
		var active nutrition.UserProfile
		s.data(env, &active)
		s.Equal(created.ID, active.ID)
	})

	s.Run("InvalidProfile_ShouldFailValidation", func() {
		rec, env := s.do(http.MethodPost, "/profiles", map[string]string{"name": "X", "ageGroup": "Toddler"})

		s.Equal(http.StatusBadRequest, rec.Code)
		s.False(env.Success)
		s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
	})

	s.Run("Unknown_ShouldReturnNotFound", func() {
		rec, env := s.do(http.MethodGet, "/profiles/missing", nil)

		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal(apperrors.CodeProfileNotFound, env.Error.Code)
	})

	s.Run("SetActiveWithoutID_ShouldFailValidation", func() {
		rec, _ := s.do(http.MethodPut, "/profiles/active", map[string]string{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *APITestSuite) TestUpdateProfile_PathIDWins() {
	active := s.activeProfile()
	active.Name = "Renamed"
	active.ID = "ignored"

	rec, env := s.do(http.MethodPut, "/profiles/"+s.activeProfile().ID, active)

	s.Equal(http.StatusOK, rec.Code)
	var updated nutrition.UserProfile
	s.data(env, &updated)
	s.Equal("Renamed", updated.Name)
	s.NotEqual("ignored", updated.ID)
}

func (s *APITestSuite) TestMalformedJSON_ShouldBeBadRequest() {
	req := httptest.NewRequest(http.MethodPost, "/grocery", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	s.Equal(apperrors.CodeBadRequest, env.Error.Code)
}

func (s *APITestSuite) TestPlanLifecycle() {
	s.client.On("Generate", mock.Anything, mock.MatchedBy(func(req outbound.GenerateRequest) bool {
		return req.JSONResponse
	})).Return(&outbound.Completion{Text: weeklyPlanJSON}, nil).Once()

	rec, env := s.do(http.MethodPost, "/plans", GeneratePlanRequest{Mode: nutrition.PlanModeFestive})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var plan nutrition.WeeklyPlan
	s.data(env, &plan)
	s.Len(plan.Days, 7)
	s.Equal(s.activeProfile().ID, plan.UserID)
	s.Equal([]string{string(nutrition.PlanModeFestive)}, s.metrics.plans)

	rec, env = s.do(http.MethodPost, "/plans/"+plan.UserID+"/grocery", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var items []nutrition.GroceryItem
	s.data(env, &items)
	s.Len(items, 2)
	s.Equal(2, s.metrics.grocery)

	rec, env = s.do(http.MethodGet, "/grocery", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.data(env, &items)
	s.Len(items, 2)

	rec, _ = s.do(http.MethodDelete, "/plans/"+plan.UserID, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/plans/"+plan.UserID, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(apperrors.CodePlanNotFound, env.Error.Code)
}

func (s *APITestSuite) TestGeneratePlan_InvalidMode() {
	rec, env := s.do(http.MethodPost, "/plans", map[string]string{"mode": "Keto"})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
	s.Empty(s.metrics.plans)
}

func (s *APITestSuite) TestGeneratePlan_MalformedModelOutput() {
	s.client.On("Generate", mock.Anything, mock.Anything).
		Return(&outbound.Completion{Text: "Here is your plan!"}, nil).Once()

	rec, env := s.do(http.MethodPost, "/plans", GeneratePlanRequest{})

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal(apperrors.CodeAIResponseMalformed, env.Error.Code)

	rec, env = s.do(http.MethodGet, "/plans", nil)
	s.Equal(http.StatusOK, rec.Code)
	var plans []nutrition.WeeklyPlan
	s.data(env, &plans)
	s.Empty(plans)
}

func (s *APITestSuite) TestGrocery() {
	rec, env := s.do(http.MethodPost, "/grocery", AddItemRequest{Name: "  Milk ", Quantity: ""})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var item nutrition.GroceryItem
	s.data(env, &item)
	s.Equal("Milk", item.Name)
	s.Equal(nutrition.DefaultQuantity, item.Quantity)
	s.Equal(nutrition.CategoryManual, item.Category)

	rec, env = s.do(http.MethodPatch, "/grocery/"+item.ID+"/toggle", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.data(env, &item)
	s.True(item.Checked)

	rec, env = s.do(http.MethodPatch, "/grocery/missing/toggle", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(apperrors.CodeGroceryItemNotFound, env.Error.Code)

	rec, _ = s.do(http.MethodDelete, "/grocery/"+item.ID, nil)
	s.Equal(http.StatusOK, rec.Code)

	s.do(http.MethodPost, "/grocery", AddItemRequest{Name: "Eggs", Quantity: "12"})
	rec, _ = s.do(http.MethodDelete, "/grocery", nil)
	s.Equal(http.StatusOK, rec.Code)

	_, env = s.do(http.MethodGet, "/grocery", nil)
	var items []nutrition.GroceryItem
	s.data(env, &items)
	s.Empty(items)

	rec, env = s.do(http.MethodPost, "/grocery", AddItemRequest{Name: ""})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
}

func (s *APITestSuite) TestProgress() {
	id := s.activeProfile().ID
	base := "/profiles/" + id + "/progress"

	rec, env := s.do(http.MethodPut, base, nutrition.ProgressData{Date: "2026-03-02", Weight: testutils.Float(70), EnergyLevel: testutils.Int(3)})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	rec, env = s.do(http.MethodPut, base, nutrition.ProgressData{Date: "2026-03-01", Weight: testutils.Float(71), EnergyLevel: testutils.Int(5)})
	s.Require().Equal(http.StatusOK, rec.Code)

	var history []nutrition.ProgressData
	s.data(env, &history)
	s.Require().Len(history, 2)
	s.Equal("2026-03-01", history[0].Date)
	s.Equal(2, s.metrics.progress)

	rec, env = s.do(http.MethodGet, base+"/summary", nil)
	s.Equal(http.StatusOK, rec.Code)
	var summary nutrition.ProgressSummary
	s.data(env, &summary)
	s.Require().NotNil(summary.LatestWeight)
	s.Equal(70.0, *summary.LatestWeight)

	rec, env = s.do(http.MethodPut, base, nutrition.ProgressData{Date: "03/04/2026", EnergyLevel: testutils.Int(9)})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apperrors.CodeValidationFailed, env.Error.Code)

	rec, env = s.do(http.MethodDelete, base+"/2026-03-01", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.data(env, &history)
	s.Len(history, 1)
}

func (s *APITestSuite) TestSuggestions() {
	s.Run("BabyFoodOutOfRange_ShouldNotCallModel", func() {
		rec, env := s.do(http.MethodGet, "/suggestions/baby-food?ageMonths=3", nil)

		s.Equal(http.StatusOK, rec.Code)
		var suggestion nutrition.BabyFoodSuggestion
		s.data(env, &suggestion)
		s.Equal(nutrition.OutOfRangeBabyFood().AgeRange, suggestion.AgeRange)
	})

	s.Run("BabyFoodNotANumber_ShouldFailValidation", func() {
		rec, env := s.do(http.MethodGet, "/suggestions/baby-food?ageMonths=soon", nil)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
	})

	s.Run("ProteinSources", func() {
		s.client.On("Generate", mock.Anything, mock.Anything).Return(&outbound.Completion{
			Text: `[{"name":"Lentils","type":"Legume","servingSize":"1 cup","proteinContent":"18g","benefits":"Fiber"}]`,
		}, nil).Once()

		rec, env := s.do(http.MethodGet, "/suggestions/protein", nil)

		s.Equal(http.StatusOK, rec.Code)
		var sources []nutrition.ProteinSource
		s.data(env, &sources)
		s.Require().Len(sources, 1)
		s.Equal("Lentils", sources[0].Name)
	})

	s.Run("MealIdeasFallback_ShouldStillSucceed", func() {
		s.client.On("Generate", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewExternalServiceError("mock", context.DeadlineExceeded)).Once()

		rec, env := s.do(http.MethodPost, "/suggestions/ingredients", IngredientsRequest{Ingredients: []string{"rice", "peas"}})

		s.Equal(http.StatusOK, rec.Code)
		s.True(env.Success)
		var ideas MealIdeas
		s.data(env, &ideas)
		s.True(ideas.Fallback)
		s.Equal(ai.IngredientsErrorText, ideas.Text)
	})

	s.Run("MealIdeasEmpty_ShouldAskForIngredients", func() {
		rec, env := s.do(http.MethodPost, "/suggestions/ingredients", IngredientsRequest{Ingredients: []string{" "}})

		s.Equal(http.StatusOK, rec.Code)
		var ideas MealIdeas
		s.data(env, &ideas)
		s.False(ideas.Fallback)
		s.Equal(ai.IngredientsEmptyText, ideas.Text)
	})
}

func (s *APITestSuite) TestChat() {
	session := &testutils.MockChatSession{}
	session.On("Send", mock.Anything, "Is ragi good for breakfast?").
		Return(&outbound.Completion{Text: "Yes, ragi is rich in calcium."}, nil).Once()
	s.client.On("NewChatSession", mock.Anything, mock.Anything).Return(session, nil).Once()

	rec, env := s.do(http.MethodPost, "/chat/messages", SendMessageRequest{Text: "Is ragi good for breakfast?"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var exchange inbound.ChatExchange
	s.data(env, &exchange)
	s.Equal(nutrition.SenderUser, exchange.Question.Sender)
	s.Equal("Yes, ragi is rich in calcium.", exchange.Answer.Text)
	s.Equal(1, s.metrics.chat)

	_, env = s.do(http.MethodGet, "/chat/messages", nil)
	var messages []nutrition.ChatMessage
	s.data(env, &messages)
	s.Len(messages, 2)

	rec, _ = s.do(http.MethodDelete, "/chat/messages", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodPost, "/chat/messages", SendMessageRequest{Text: ""})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
	session.AssertExpectations(s.T())
}

func (s *APITestSuite) TestChat_FallbackReplyIsNotCounted() {
	session := &testutils.MockChatSession{}
	session.On("Send", mock.Anything, "hello").Return(nil, errors.New("quota exceeded")).Once()
	s.client.On("NewChatSession", mock.Anything, mock.Anything).Return(session, nil).Once()

	rec, env := s.do(http.MethodPost, "/chat/messages", SendMessageRequest{Text: "hello"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var exchange inbound.ChatExchange
	s.data(env, &exchange)
	s.True(exchange.Fallback)
	s.Equal(ai.ChatErrorText, exchange.Answer.Text)
	s.Equal(0, s.metrics.chat)
	session.AssertExpectations(s.T())
}

func (s *APITestSuite) TestAuth() {
	s.identity.On("UserInfo", mock.Anything, "google-token").
		Return(&googleUser, nil).Once()
	s.identity.On("Revoke", mock.Anything, "google-token").Return(nil).Once()

	rec, env := s.do(http.MethodPost, "/auth/google", TokenRequest{AccessToken: "google-token"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var session inbound.Session
	s.data(env, &session)
	s.NotEmpty(session.Token)
	s.Equal(googleUser.Email, session.User.Email)

	rec, env = s.do(http.MethodGet, "/auth/me", nil, "Authorization", "Bearer "+session.Token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(string(env.Data), googleUser.Email)

	rec, _ = s.do(http.MethodGet, "/auth/me", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodPost, "/auth/logout", TokenRequest{AccessToken: "google-token"})
	s.Equal(http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodPost, "/auth/google", TokenRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apperrors.CodeValidationFailed, env.Error.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
