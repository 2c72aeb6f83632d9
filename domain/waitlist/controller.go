package waitlist

import (
	"github.com/hutmuts/hutmuts-api/config/router"
	"github.com/hutmuts/hutmuts-api/internal/log"
	apperrors "github.com/hutmuts/hutmuts-api/pkg/errors"
	"gorm.io/gorm"
)

func NewWaitlistController(
	db *gorm.DB,
	logger *log.Logger,
	cache Cache,
) *router.RESTController {

	return router.NewRESTController(
		"WaitlistController",
		"/api/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewWaitlistRepository(db)
			service := NewWaitlistService(logger, repository, cache)

			rs.AddPostHandler(c, nil, "", joinWaitlistHandler(service))
			rs.AddGetHandler(c, nil, "", getAllWaitlistEntriesHandler(service))
		},
	)
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind waitlist submission", "error", err)

			violations := apperrors.FormatValidationErrors(err, &req)
			if len(violations) > 0 {
				return router.BadRequestResult(MsgInvalidRequestData, violations)
			}

			return router.BadRequestResult(MsgInvalidRequestData, nil)
		}

		response, err := service.JoinWaitlist(ctx.Request.Context(), &req)
		if err != nil {
			status := apperrors.HTTPStatusCode(err)
			if status >= 500 {
				// Internal detail stays in the logs.
				return router.InternalServerErrorResult(MsgJoinFailed)
			}
			return router.ErrorResult(status, apperrors.GetHumanReadableMessage(err), nil)
		}

		return router.CreatedResult(response)
	}
}

func getAllWaitlistEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		responses, err := service.GetAllEntries(ctx.Request.Context())
		if err != nil {
			logger.Error("Failed to retrieve waitlist entries", "error", err)
			return router.InternalServerErrorResult(MsgListFailed)
		}

		return router.OKResult(responses)
	}
}
