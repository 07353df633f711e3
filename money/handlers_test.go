package money

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/miniweb-go/apperror"
	"github.com/user/miniweb-go/auth"
	"github.com/user/miniweb-go/session"
)

const testCookie = "test_session"

// fakeStore implements Store in memory with the same ordering the database
// query has: newest first, ties broken by id descending.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	txs    []Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: time.Now()}
}

func (s *fakeStore) Create(ctx context.Context, tx *Transaction) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	tx.ID = s.nextID
	tx.Date = s.clock
	s.txs = append(s.txs, *tx)
	return tx, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID int64) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Transaction{}
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// fakeUsers implements auth.Store for the full register/login scenario.
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User
}

func (s *fakeUsers) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, apperror.NewConflictError("user already exists", nil)
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUsers) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
}

func (s *fakeUsers) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
	}
	return u, nil
}

type moneyTestApp struct {
	srv      *httptest.Server
	store    *fakeStore
	sessions *session.MemoryStore
}

// newMoneyTestApp wires the tracker the way cmd/moneytracker does, with the
// dashboard page reduced to a flash-emitting stub.
func newMoneyTestApp(t *testing.T) *moneyTestApp {
	t.Helper()

	store := newFakeStore()
	sessions := session.NewMemoryStore(time.Hour)
	users := &fakeUsers{users: make(map[int64]*auth.User)}
	authHandlers := auth.NewHandlers(auth.NewService(users), sessions, testCookie, "/dashboard")
	handlers := NewHandlers(NewService(store), sessions)

	r := chi.NewRouter()
	r.Use(session.Middleware(sessions, testCookie))
	r.Post("/register", authHandlers.HandleRegister())
	r.Post("/login", authHandlers.HandleLogin())
	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth)
		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			session.EmitFlashes(w, r, sessions)
			w.WriteHeader(http.StatusOK)
		})
		r.Post("/transactions", handlers.HandleCreate())
		r.Get("/transactions", handlers.HandleList())
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &moneyTestApp{srv: srv, store: store, sessions: sessions}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// signUp registers and logs the user in on a fresh client.
func (app *moneyTestApp) signUp(t *testing.T, username string) *http.Client {
	t.Helper()
	client := newBrowser(t)
	resp, err := client.PostForm(app.srv.URL+"/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"s3cret"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.PostForm(app.srv.URL+"/login", url.Values{
		"username": {username},
		"password": {"s3cret"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	return client
}

func (app *moneyTestApp) addTransaction(t *testing.T, client *http.Client, txType, amount, description string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(app.srv.URL+"/transactions", url.Values{
		"type":        {txType},
		"amount":      {amount},
		"description": {description},
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (app *moneyTestApp) listTransactions(t *testing.T, client *http.Client) []Transaction {
	t.Helper()
	resp, err := client.Get(app.srv.URL + "/transactions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var txs []Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&txs))
	return txs
}

func TestTracker_RegisterLoginRecordList(t *testing.T) {
	app := newMoneyTestApp(t)
	alice := app.signUp(t, "alice")

	resp := app.addTransaction(t, alice, "income", "100", "salary")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	txs := app.listTransactions(t, alice)
	require.Len(t, txs, 1)
	assert.Equal(t, "income", txs[0].Type)
	assert.Equal(t, 100.0, txs[0].Amount)
	assert.Equal(t, "salary", txs[0].Description)
	assert.False(t, txs[0].Date.IsZero())
}

func TestHandleCreate_RequiresLogin(t *testing.T) {
	app := newMoneyTestApp(t)

	resp, err := newBrowser(t).PostForm(app.srv.URL+"/transactions", url.Values{
		"type":   {"income"},
		"amount": {"100"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, app.store.count())
}

func TestHandleCreate_InvalidInputFlashesAndSavesNothing(t *testing.T) {
	app := newMoneyTestApp(t)
	alice := app.signUp(t, "alice")

	cases := []struct {
		name           string
		txType, amount string
	}{
		{"bad type", "transfer", "100"},
		{"missing type", "", "100"},
		{"non-numeric amount", "income", "lots"},
		{"missing amount", "income", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := app.addTransaction(t, alice, tc.txType, tc.amount, "whatever")
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

			pageResp, err := alice.Get(app.srv.URL + "/dashboard")
			require.NoError(t, err)
			pageResp.Body.Close()
			assert.Equal(t, MsgTransactionInvalid, pageResp.Header.Get(session.HeaderFlashError))
		})
	}
	assert.Equal(t, 0, app.store.count())
}

func TestHandleList_NewestFirst(t *testing.T) {
	app := newMoneyTestApp(t)
	alice := app.signUp(t, "alice")

	app.addTransaction(t, alice, "income", "100", "salary")
	app.addTransaction(t, alice, "expense", "20", "groceries")
	app.addTransaction(t, alice, "expense", "5", "coffee")

	txs := app.listTransactions(t, alice)
	require.Len(t, txs, 3)
	assert.Equal(t, "coffee", txs[0].Description)
	assert.Equal(t, "groceries", txs[1].Description)
	assert.Equal(t, "salary", txs[2].Description)
	assert.True(t, txs[0].Date.After(txs[2].Date))
}

func TestHandleList_IsolatedPerUser(t *testing.T) {
	app := newMoneyTestApp(t)
	alice := app.signUp(t, "alice")
	bob := app.signUp(t, "bob")

	app.addTransaction(t, alice, "income", "100", "alice salary")
	app.addTransaction(t, bob, "expense", "42", "bob rent")

	aliceTxs := app.listTransactions(t, alice)
	require.Len(t, aliceTxs, 1)
	assert.Equal(t, "alice salary", aliceTxs[0].Description)

	bobTxs := app.listTransactions(t, bob)
	require.Len(t, bobTxs, 1)
	assert.Equal(t, "bob rent", bobTxs[0].Description)
}

func TestService_CreateValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateForm{Type: "transfer", Amount: 10}, 1)
	assert.True(t, apperror.IsValidationError(err))

	_, err = svc.Create(context.Background(), CreateForm{Type: "income"}, 1)
	assert.True(t, apperror.IsValidationError(err), "zero amount fails required")

	tx, err := svc.Create(context.Background(), CreateForm{Type: "expense", Amount: 12.5, Description: "books"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tx.UserID)
	assert.Equal(t, 12.5, tx.Amount)
	assert.Equal(t, 1, store.count())
}
