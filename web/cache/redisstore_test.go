package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, []byte("0123456789abcdef0123456789abcdef"))
}

func newRouter(store sessions.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("folio", store))
	r.GET("/set", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set("user", c.Query("v"))
		_ = s.Save()
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := sessions.Default(c).Get("user").(string)
		c.String(http.StatusOK, v)
	})
	r.GET("/clear", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Clear()
		s.Options(sessions.Options{Path: "/", MaxAge: -1})
		_ = s.Save()
	})
	return r
}

func do(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "folio" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func sessionKeys(mr *miniredis.Miniredis) []string {
	var out []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, keyPrefix) {
			out = append(out, k)
		}
	}
	return out
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, store := newStore(t)
	r := newRouter(store)

	cookie := sessionCookie(t, do(r, "/set?v=alice", nil))
	assert.NotContains(t, cookie.Value, "alice")
	require.Len(t, sessionKeys(mr), 1)

	w := do(r, "/get", cookie)
	assert.Equal(t, "alice", w.Body.String())
	assert.True(t, mr.TTL(sessionKeys(mr)[0]) > 0)
}

func TestRedisStoreClearDeletesKey(t *testing.T) {
	mr, store := newStore(t)
	r := newRouter(store)

	cookie := sessionCookie(t, do(r, "/set?v=alice", nil))
	require.Len(t, sessionKeys(mr), 1)

	w := do(r, "/clear", cookie)
	assert.Less(t, sessionCookie(t, w).MaxAge, 0)
	assert.Empty(t, sessionKeys(mr))

	assert.Empty(t, do(r, "/get", cookie).Body.String())
}

func TestRedisStoreIgnoresForgedCookie(t *testing.T) {
	_, store := newStore(t)
	r := newRouter(store)

	forged := &http.Cookie{Name: "folio", Value: "not-a-signed-id"}
	w := do(r, "/get", forged)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRedisStoreExpiredKey(t *testing.T) {
	mr, store := newStore(t)
	r := newRouter(store)

	cookie := sessionCookie(t, do(r, "/set?v=alice", nil))
	mr.FlushAll()

	assert.Empty(t, do(r, "/get", cookie).Body.String())
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Dial(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	defer client.Close()

	_, err = Dial(context.Background(), "127.0.0.1:1", "")
	assert.Error(t, err)
}
