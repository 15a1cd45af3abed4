package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/valyala/fasthttp"

	"docflow/internal/apperr"
)

// Forward relays the request, path and query unchanged, to the upstream at
// base. The response of the upstream is written back as is.
func Forward(base string, client *fasthttp.Client, timeout time.Duration) fiber.Handler {
	base = strings.TrimSuffix(base, "/")
	if client == nil {
		client = newUpstreamClient()
	}
	return func(c *fiber.Ctx) error {
		if err := proxy.DoTimeout(c, base+c.OriginalURL(), timeout, client); err != nil {
			return apperr.Upstream(err)
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}

// BlockInternal hides service-to-service endpoints from the outside.
func BlockInternal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isInternalPath(c.Path()) {
			return fiber.ErrNotFound
		}
		return c.Next()
	}
}

// isInternalPath reports whether the last path segment is "translate" in any letter case.
func isInternalPath(path string) bool {
	path = strings.TrimRight(path, "/")
	last := path[strings.LastIndexByte(path, '/')+1:]
	return strings.EqualFold(last, "translate")
}

func newUpstreamClient() *fasthttp.Client {
	return &fasthttp.Client{
		NoDefaultUserAgentHeader: true,
		DisablePathNormalizing:   true,
		MaxIdleConnDuration:      30 * time.Second,
	}
}
