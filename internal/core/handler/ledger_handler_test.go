package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/Nzyazin/finledger/internal/core/handler"
	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository/memory"
	"github.com/Nzyazin/finledger/internal/core/usecase"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *mux.Router
	tokens *auth.JWTManager
	users  usecase.UserUsecase
}

func newTestServer() *testServer {
	log := logger.NewNop()
	operations := memory.NewOperationStore()
	users := memory.NewUserRepository()
	tokens := auth.NewJWTManager("test-secret", time.Hour)

	balance := usecase.NewBalanceCalculator(operations, users, log)
	ledgerUC := usecase.NewLedgerUsecase(operations, users, balance, log)
	statementUC := usecase.NewStatementUsecase(operations, users, log)
	userUC := usecase.NewUserUsecase(users, tokens, log)

	ledgerHandler := handler.NewLedgerHandler(ledgerUC, statementUC, log)
	userHandler := handler.NewUserHandler(userUC, log)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users", userHandler.Create).Methods("POST")
	api.HandleFunc("/sessions", userHandler.Authenticate).Methods("POST")

	secured := api.NewRoute().Subrouter()
	secured.Use(auth.Middleware(tokens, log))
	secured.HandleFunc("/profile", userHandler.Profile).Methods("GET")
	secured.HandleFunc("/statements/deposit", ledgerHandler.Deposit).Methods("POST")
	secured.HandleFunc("/statements/withdraw", ledgerHandler.Withdraw).Methods("POST")
	secured.HandleFunc("/statements/transfer/{receiver_id}", ledgerHandler.Transfer).Methods("POST")
	secured.HandleFunc("/statements/balance", ledgerHandler.GetStatement).Methods("GET")
	secured.HandleFunc("/statements/{operation_id}", ledgerHandler.GetOperation).Methods("GET")

	return &testServer{router: router, tokens: tokens, users: userUC}
}

func (s *testServer) signUp(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	user, err := s.users.CreateUser(context.Background(), name, name+"@example.com", "secret123")
	require.NoError(t, err)
	token, err := s.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestDepositAndStatementOverHTTP(t *testing.T) {
	srv := newTestServer()
	_, token := srv.signUp(t, "wade")

	rec := srv.do(t, http.MethodPost, "/api/v1/statements/deposit", token,
		map[string]string{"amount": "100.50", "description": "salary"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var op models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))
	assert.Equal(t, models.OperationDeposit, op.Type)

	rec = srv.do(t, http.MethodGet, "/api/v1/statements/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var statement struct {
		Balance    string             `json:"balance"`
		Operations []models.Operation `json:"statement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statement))
	assert.Equal(t, "100.5", statement.Balance)
	assert.Len(t, statement.Operations, 1)
}

func TestWithdrawWithoutFundsOverHTTP(t *testing.T) {
	srv := newTestServer()
	_, token := srv.signUp(t, "xena")

	rec := srv.do(t, http.MethodPost, "/api/v1/statements/withdraw", token,
		map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient funds")
}

func TestTransferOverHTTP(t *testing.T) {
	srv := newTestServer()
	receiver, _ := srv.signUp(t, "yuri")
	_, senderToken := srv.signUp(t, "zoe")

	rec := srv.do(t, http.MethodPost, "/api/v1/statements/deposit", senderToken,
		map[string]string{"amount": "80"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/statements/transfer/"+receiver.ID.String(), senderToken,
		map[string]string{"amount": "30", "description": "rent"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var op models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))
	assert.Equal(t, models.OperationTransfer, op.Type)
	assert.Equal(t, receiver.ID, op.OwnerID)
	require.NotNil(t, op.CounterpartyID)
}

func TestInvalidAmountOverHTTP(t *testing.T) {
	srv := newTestServer()
	_, token := srv.signUp(t, "abby")

	for _, amount := range []string{"abc", "-5", "1.234", ""} {
		rec := srv.do(t, http.MethodPost, "/api/v1/statements/deposit", token,
			map[string]string{"amount": amount})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
	}
}

func TestGetOperationOwnershipOverHTTP(t *testing.T) {
	srv := newTestServer()
	_, ownerToken := srv.signUp(t, "ben")
	_, strangerToken := srv.signUp(t, "cleo")

	rec := srv.do(t, http.MethodPost, "/api/v1/statements/deposit", ownerToken,
		map[string]string{"amount": "10"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var op models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))

	path := fmt.Sprintf("/api/v1/statements/%s", op.ID)
	rec = srv.do(t, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, path, strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	srv := newTestServer()

	rec := srv.do(t, http.MethodGet, "/api/v1/statements/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/statements/deposit", "garbage",
		map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUserAndAuthenticateOverHTTP(t *testing.T) {
	srv := newTestServer()

	rec := srv.do(t, http.MethodPost, "/api/v1/users", "",
		map[string]string{"name": "Dina", "email": "dina@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions", "",
		map[string]string{"email": "dina@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var session struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	rec = srv.do(t, http.MethodGet, "/api/v1/profile", session.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions", "",
		map[string]string{"email": "dina@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
