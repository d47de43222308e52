package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/model"
)

const (
	ActorIDHeader   = "X-Actor-ID"
	ActorNameHeader = "X-Actor-Name"
	// ActorLocalKey is the key used to store the acting model.Actor in Fiber's context locals.
	ActorLocalKey = "actor"
)

// Actor resolves who is calling from the X-Actor-ID and X-Actor-Name headers.
// Requests without an actor id run as model.SystemActor.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := model.SystemActor
		if id := c.Get(ActorIDHeader); id != "" {
			actor = model.Actor{ID: id, Name: c.Get(ActorNameHeader, id)}
		}
		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// ActorFromCtx returns the actor stored by Actor, or model.SystemActor when the middleware did not run.
func ActorFromCtx(c *fiber.Ctx) model.Actor {
	if a, ok := c.Locals(ActorLocalKey).(model.Actor); ok {
		return a
	}
	return model.SystemActor
}
