package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/policy"
)

type commissionApi struct {
	gate *policyGate
	svc  *commission.Service
}

func registerCommissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, gate *policyGate, svc *commission.Service) {
	api := commissionApi{gate: gate, svc: svc}

	cg := g.Group("/commissions", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("", api.create, adminMiddleware())
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy, adminMiddleware())

	// enrollment links
	cg.PUT("/:id/students/:userID", api.addStudent)
	cg.DELETE("/:id/students/:userID", api.removeStudent)
	cg.PUT("/:id/teachers/:userID", api.addTeacher)
	cg.DELETE("/:id/teachers/:userID", api.removeTeacher)
	cg.PUT("/:id/groups/:groupID", api.addGroup)
	cg.DELETE("/:id/groups/:groupID", api.removeGroup)
}

func (api *commissionApi) create(ctx echo.Context) error {
	var data commission.NewCommission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCommission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	com, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, com)
}

func (api *commissionApi) query(ctx echo.Context) error {
	commissions, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying commissions")
	}
	if commissions == nil {
		commissions = []commission.Commission{}
	}
	return ctx.JSON(http.StatusOK, commissions)
}

func (api *commissionApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	com, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: id,
	}); err != nil {
		return err
	}

	var data commission.UpdateCommission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCommission")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	com, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// link handlers

func (api *commissionApi) linkIDs(ctx echo.Context, param string) (commissionID, otherID int, err error) {
	if commissionID, err = intParam(ctx, "id"); err != nil {
		return
	}
	otherID, err = intParam(ctx, param)
	return
}

func (api *commissionApi) addStudent(ctx echo.Context) error {
	commissionID, studentID, err := api.linkIDs(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	com, err := api.svc.AddStudent(ctx.Request().Context(), commissionID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) removeStudent(ctx echo.Context) error {
	commissionID, studentID, err := api.linkIDs(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, TargetUserID: studentID,
	}); err != nil {
		return err
	}
	com, err := api.svc.RemoveStudent(ctx.Request().Context(), commissionID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) addTeacher(ctx echo.Context) error {
	commissionID, teacherID, err := api.linkIDs(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, TargetUserID: teacherID,
	}); err != nil {
		return err
	}
	com, err := api.svc.AddTeacher(ctx.Request().Context(), commissionID, teacherID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) removeTeacher(ctx echo.Context) error {
	commissionID, teacherID, err := api.linkIDs(ctx, "userID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, TargetUserID: teacherID,
	}); err != nil {
		return err
	}
	com, err := api.svc.RemoveTeacher(ctx.Request().Context(), commissionID, teacherID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) addGroup(ctx echo.Context) error {
	commissionID, groupID, err := api.linkIDs(ctx, "groupID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionLink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, GroupID: groupID,
	}); err != nil {
		return err
	}
	com, err := api.svc.AddGroup(ctx.Request().Context(), commissionID, groupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}

func (api *commissionApi) removeGroup(ctx echo.Context) error {
	commissionID, groupID, err := api.linkIDs(ctx, "groupID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUnlink, policy.Resource{
		Type: policy.ResourceCommission, CommissionID: commissionID, GroupID: groupID,
	}); err != nil {
		return err
	}
	com, err := api.svc.RemoveGroup(ctx.Request().Context(), commissionID, groupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, com)
}
