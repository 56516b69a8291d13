package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/policy"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/repo"
)

// relationshipReader joins the aggregate services into the read contract the
// policy evaluator consults.
type relationshipReader struct {
	commissionSvc *commission.Service
	groupSvc      *group.Service
	projectSvc    *project.Service
	repoSvc       *repo.Service
}

var _ policy.RelationshipReader = (*relationshipReader)(nil)

func newRelationshipReader(
	commissionSvc *commission.Service,
	groupSvc *group.Service,
	projectSvc *project.Service,
	repoSvc *repo.Service,
) *relationshipReader {
	return &relationshipReader{
		commissionSvc: commissionSvc,
		groupSvc:      groupSvc,
		projectSvc:    projectSvc,
		repoSvc:       repoSvc,
	}
}

func (r *relationshipReader) TeacherInCommission(ctx context.Context, teacherID, commissionID int) (bool, error) {
	return r.commissionSvc.IsTeacher(ctx, commissionID, teacherID)
}

func (r *relationshipReader) StudentInGroup(ctx context.Context, studentID, groupID int) (bool, error) {
	return r.groupSvc.IsMember(ctx, groupID, studentID)
}

func (r *relationshipReader) StudentOwnsProject(ctx context.Context, studentID, projectID int) (bool, error) {
	prj, err := r.projectSvc.GetByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	return prj.OwnedByStudent(studentID), nil
}

func (r *relationshipReader) CommissionOfGroup(ctx context.Context, groupID int) (int, error) {
	com, err := r.commissionSvc.GetOwningGroup(ctx, groupID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return com.ID, nil
}

func (r *relationshipReader) GroupOwningProject(ctx context.Context, projectID int) (int, error) {
	prj, err := r.projectSvc.GetByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if prj.OwnerGroupID == nil {
		return 0, nil
	}
	return *prj.OwnerGroupID, nil
}

func (r *relationshipReader) ProjectOfRepo(ctx context.Context, repoID int) (int, error) {
	rp, err := r.repoSvc.GetByID(ctx, repoID)
	if err != nil {
		return 0, err
	}
	return rp.ProjectID, nil
}

// policyGate runs one policy evaluation per mutating handler before the
// effect executes.
type policyGate struct {
	eval *policy.Evaluator
}

func newPolicyGate(eval *policy.Evaluator) *policyGate {
	return &policyGate{eval: eval}
}

func (g *policyGate) allow(ctx echo.Context, act policy.Action, res policy.Resource) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if !g.eval.Allow(ctx.Request().Context(), claims.Identity(), act, res) {
		return errHttpForbidden
	}
	return nil
}
