package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimitEnforcesWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := testRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within the limit", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different caller has its own budget.
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window resets once the key expires.
	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimitDisabledOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	// No Redis needed: the limiter short-circuits.
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := testRedis(t)

	app := fiber.New()
	app.Get("/limited", RateLimit(rdb, 2, time.Minute, "limited"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/limited", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/limited", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitUsesRequestContext(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := testRedis(t)

	// A request whose context is already canceled must not reach Redis; the
	// limiter sees the cancellation and the failure policy decides the
	// outcome.
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		ctx, cancel := context.WithCancel(c.UserContext())
		cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})
	app.Get("/limited", RateLimitWithPolicy(rdb, 5, time.Minute, FailClosed, "ctx"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/limited", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRateLimitFailurePolicies(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	// Nil client makes every check fail; the policy decides the outcome.
	open := fiber.New()
	open.Get("/open", RateLimit(nil, 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	resp, err := open.Test(httptest.NewRequest(fiber.MethodGet, "/open", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	closed := fiber.New()
	closed.Get("/closed", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	resp, err = closed.Test(httptest.NewRequest(fiber.MethodGet, "/closed", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
