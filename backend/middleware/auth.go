package middleware

import (
	"lessons/backend/identity"
	"lessons/backend/policy"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	localsPrincipal = "principal"
	localsClaims    = "claims"
)

// AuthMiddleware requires a valid bearer token and stores the freshly read
// principal on the request.
func AuthMiddleware(resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, claims, err := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.Fail(c, err)
		}
		c.Locals(localsPrincipal, p)
		c.Locals(localsClaims, claims)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through but still rejects a bad token.
func OptionalAuth(resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, claims, err := resolver.ResolveOptional(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.Fail(c, err)
		}
		if p != nil {
			c.Locals(localsPrincipal, p)
			c.Locals(localsClaims, claims)
		}
		return c.Next()
	}
}

// Require runs a policy guard against the request principal.
func Require(guard policy.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := guard(Principal(c)); err != nil {
			return utils.Fail(c, err)
		}
		return c.Next()
	}
}

func AdminMiddleware() fiber.Handler {
	return Require(policy.RequireAdmin)
}

// Principal returns nil for anonymous requests.
func Principal(c *fiber.Ctx) *policy.Principal {
	p, _ := c.Locals(localsPrincipal).(*policy.Principal)
	return p
}

func Claims(c *fiber.Ctx) *identity.Claims {
	claims, _ := c.Locals(localsClaims).(*identity.Claims)
	return claims
}
