package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core/policy"
	"github.com/acadio/practia/core/project"
)

type projectApi struct {
	gate *policyGate
	svc  *project.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, gate *policyGate, svc *project.Service) {
	api := projectApi{gate: gate, svc: svc}

	pg := g.Group("/projects", jwt)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.POST("", api.create, staffMiddleware())
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)

	pg.PUT("/:id/owner/:studentID", api.assignOwner)
	pg.DELETE("/:id/owner/:studentID", api.unassignOwner)

	pg.POST("/:id/deploys", api.createDeploy)
	pg.GET("/:id/deploys", api.queryDeploys)
	pg.DELETE("/:id/deploys/:deployID", api.destroyDeploy)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	prj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var (
		projects []project.Project
		err      error
	)
	switch {
	case ctx.QueryParam("student") != "":
		var studentID int
		if studentID, err = intQueryParam(ctx, "student"); err != nil {
			return err
		}
		projects, err = api.svc.QueryByStudent(reqCtx, studentID)
	case ctx.QueryParam("group") != "":
		var groupID int
		if groupID, err = intQueryParam(ctx, "group"); err != nil {
			return err
		}
		projects, err = api.svc.QueryByGroup(reqCtx, groupID)
	default:
		projects, err = api.svc.QueryAll(reqCtx)
	}
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	prj, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceProject, ProjectID: id,
	}); err != nil {
		return err
	}

	var data project.UpdateProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	prj, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionDelete, policy.Resource{
		Type: policy.ResourceProject, ProjectID: id,
	}); err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectApi) assignOwner(ctx echo.Context) error {
	projectID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceProject, ProjectID: projectID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	prj, err := api.svc.AssignToStudent(ctx.Request().Context(), studentID, projectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) unassignOwner(ctx echo.Context) error {
	projectID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceProject, ProjectID: projectID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	prj, err := api.svc.UnassignFromStudent(ctx.Request().Context(), studentID, projectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) createDeploy(ctx echo.Context) error {
	projectID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceProject, ProjectID: projectID,
	}); err != nil {
		return err
	}

	var data project.NewDeployInstance
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDeployInstance")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	dep, err := api.svc.CreateDeployInstance(ctx.Request().Context(), projectID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dep)
}

func (api *projectApi) queryDeploys(ctx echo.Context) error {
	projectID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	deploys, err := api.svc.QueryDeployInstances(ctx.Request().Context(), projectID)
	if err != nil {
		return err
	}
	if deploys == nil {
		deploys = []project.DeployInstance{}
	}
	return ctx.JSON(http.StatusOK, deploys)
}

func (api *projectApi) destroyDeploy(ctx echo.Context) error {
	projectID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceProject, ProjectID: projectID,
	}); err != nil {
		return err
	}
	deployID, err := intParam(ctx, "deployID")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteDeployInstance(ctx.Request().Context(), deployID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
