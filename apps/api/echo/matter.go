package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core/matter"
)

type matterApi struct {
	gate *policyGate
	svc  *matter.Service
}

func registerMatterAPI(g *echo.Group, jwt echo.MiddlewareFunc, gate *policyGate, svc *matter.Service) {
	api := matterApi{gate: gate, svc: svc}

	mg := g.Group("/matters", jwt)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.POST("", api.create, adminMiddleware())
	mg.PUT("/:id", api.update, adminMiddleware())
	mg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *matterApi) create(ctx echo.Context) error {
	var data matter.NewMatter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMatter")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	mat, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *matterApi) query(ctx echo.Context) error {
	matters, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying matters")
	}
	if matters == nil {
		matters = []matter.Matter{}
	}
	return ctx.JSON(http.StatusOK, matters)
}

func (api *matterApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	mat, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *matterApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data matter.UpdateMatter
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMatter")
	}
	if err = data.Validate(orig, api.svc); err != nil {
		return err
	}

	mat, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *matterApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
