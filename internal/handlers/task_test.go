package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskz/internal/constants"
	"github.com/yukikurage/taskz/internal/dto"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"github.com/yukikurage/taskz/internal/services"
	"github.com/yukikurage/taskz/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// withPrincipal stands in for RequireAuth.
func withPrincipal(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyPrincipal, user)
		c.Next()
	}
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	alice   *models.User
	bob     *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.db = testutil.NewDB(suite.T())

	store := repository.NewStore(suite.db)
	suite.handler = NewTaskHandler(services.NewTaskService(store, policy.RoleBased{}, zap.NewNop()), zap.NewNop())

	suite.alice = testutil.CreateUser(suite.T(), suite.db, "alice", "alice@example.com", models.RoleNormal, nil)
	suite.bob = testutil.CreateUser(suite.T(), suite.db, "bob", "bob@example.com", models.RoleNormal, nil)
}

func (suite *TaskHandlerTestSuite) routerFor(user *models.User) *gin.Engine {
	r := gin.New()
	g := r.Group("/tasks", withPrincipal(user))
	g.GET("/", suite.handler.ListTasks)
	g.POST("/", suite.handler.CreateTask)
	g.GET("/:id", suite.handler.GetTask)
	g.PUT("/:id", suite.handler.UpdateTask)
	g.DELETE("/:id", suite.handler.DeleteTask)
	return r
}

func (suite *TaskHandlerTestSuite) request(user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.routerFor(user).ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	w := suite.request(suite.alice, http.MethodPost, "/tasks/", map[string]interface{}{
		"title":       "Test Task",
		"description": "Test Description",
		"due_date":    "2025-12-31T00:00:00Z",
		"assigned_to": "Bob@Example.com",
	})
	suite.Equal(http.StatusCreated, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Test Task", response.Title)
	suite.Equal("alice@example.com", response.CreatedBy)
	suite.Equal("bob@example.com", response.AssignedTo)
	suite.Require().NotNil(response.DueDate)
	suite.Equal(2025, response.DueDate.Year())
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Invalid() {
	w := suite.request(suite.alice, http.MethodPost, "/tasks/", map[string]interface{}{"description": "no title"})
	suite.Equal(http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.routerFor(suite.alice).ServeHTTP(rec, req)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	testutil.CreateTask(suite.T(), suite.db, models.Task{ID: "t1", Title: "Mine", CreatedBy: "alice@example.com"})
	testutil.CreateTask(suite.T(), suite.db, models.Task{ID: "t2", Title: "Assigned", CreatedBy: "bob@example.com", AssignedTo: "alice@example.com"})
	testutil.CreateTask(suite.T(), suite.db, models.Task{ID: "t3", Title: "Other", CreatedBy: "bob@example.com"})

	w := suite.request(suite.alice, http.MethodGet, "/tasks/", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response, 2)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	testutil.CreateTask(suite.T(), suite.db, models.Task{ID: "t1", Title: "Original", Status: "todo", CreatedBy: "alice@example.com"})

	w := suite.request(suite.alice, http.MethodPut, "/tasks/t1", map[string]interface{}{"title": "Updated Title"})
	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Updated Title", response.Title)
	suite.Equal("todo", response.Status)

	w = suite.request(suite.bob, http.MethodPut, "/tasks/t1", map[string]interface{}{"title": "Nope"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	testutil.CreateTask(suite.T(), suite.db, models.Task{ID: "t1", Title: "Doomed", CreatedBy: "alice@example.com"})

	w := suite.request(suite.bob, http.MethodDelete, "/tasks/t1", nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(suite.alice, http.MethodDelete, "/tasks/t1", nil)
	suite.Equal(http.StatusNoContent, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", "t1").Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	w := suite.request(suite.alice, http.MethodGet, "/tasks/missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
