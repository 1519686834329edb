package controller

import (
	"context"
	"encoding/json"

	"doc-qna-be/internal/dto"
	"doc-qna-be/internal/pkg/serverutils"
	"doc-qna-be/internal/service"
	internalWS "doc-qna-be/internal/websocket"
	"doc-qna-be/pkg/rag/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
	AskWs(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("ask", c.Ask)
	h.Post("summarize", c.Summarize)
	h.Get("ws", c.AskWs)
}

func (c *queryController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *queryController) Summarize(ctx *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Summarize(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success summarize documents", res))
}

// AskWs serves the streaming variant: each inbound frame is one
// question, answered as a start/stream/end event sequence on the same
// connection. Pipeline failures surface as error events; the
// connection itself stays open for the next question.
func (c *queryController) AskWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		transport := internalWS.NewStreamConn(conn)

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req dto.AskRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				emitter := stream.NewEmitter(transport)
				_ = emitter.Error("invalid request: " + err.Error())
				continue
			}
			if req.Question == "" {
				emitter := stream.NewEmitter(transport)
				_ = emitter.Error("question is required")
				continue
			}

			// The fiber context dies with the upgrade; the run lives as
			// long as the connection does.
			emitter := stream.NewEmitter(transport)
			_ = c.queryService.AskStream(context.Background(), &req, emitter)
		}
	})(ctx)
}
