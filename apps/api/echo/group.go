package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/policy"
	"github.com/acadio/practia/core/project"
)

type groupApi struct {
	gate       *policyGate
	svc        *group.Service
	projectSvc *project.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, gate *policyGate, svc *group.Service, projectSvc *project.Service) {
	api := groupApi{gate: gate, svc: svc, projectSvc: projectSvc}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.POST("", api.create)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)

	gg.GET("/:id/projects", api.queryProjects)

	gg.PUT("/:id/members/:userID", api.addMember)
	gg.DELETE("/:id/members/:userID", api.removeMember)
	gg.PUT("/:id/projects/:projectID", api.addProject)
	gg.DELETE("/:id/projects/:projectID", api.removeProject)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// a student creating a group must be among its initial members
	if err := api.gate.allow(ctx, policy.ActionCreate, policy.Resource{
		Type: policy.ResourceGroup, NewGroupMemberIDs: data.MemberIDs,
	}); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceGroup, GroupID: id,
	}); err != nil {
		return err
	}

	var data group.UpdateGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionDelete, policy.Resource{
		Type: policy.ResourceGroup, GroupID: id,
	}); err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) queryProjects(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return err
	}
	projects, err := api.projectSvc.QueryByGroup(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying group projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *groupApi) addMember(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceGroup, GroupID: groupID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	grp, err := api.svc.AddMember(ctx.Request().Context(), groupID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceGroup, GroupID: groupID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	grp, err := api.svc.RemoveMember(ctx.Request().Context(), groupID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) addProject(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	projectID, err := intParam(ctx, "projectID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceGroup, GroupID: groupID, ProjectID: projectID,
	}); err != nil {
		return err
	}
	grp, err := api.svc.AddProject(ctx.Request().Context(), groupID, projectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) removeProject(ctx echo.Context) error {
	groupID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	projectID, err := intParam(ctx, "projectID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceGroup, GroupID: groupID, ProjectID: projectID,
	}); err != nil {
		return err
	}
	grp, err := api.svc.RemoveProject(ctx.Request().Context(), groupID, projectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}
