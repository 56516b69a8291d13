package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core/policy"
	"github.com/acadio/practia/core/repo"
)

type repoApi struct {
	gate *policyGate
	svc  *repo.Service
}

// PagedResponse wraps a host-derived collection with its page count so
// clients can iterate without guessing.
type PagedResponse struct {
	Results   interface{} `json:"results"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	PageCount int         `json:"page_count"`
}

func registerRepoAPI(g *echo.Group, jwt echo.MiddlewareFunc, gate *policyGate, svc *repo.Service) {
	api := repoApi{gate: gate, svc: svc}

	g.POST("/projects/:projectID/repos", api.create, jwt)
	g.GET("/projects/:projectID/repos", api.queryByProject, jwt)

	rg := g.Group("/repos", jwt)
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)

	rg.GET("/:id/commits", api.commits)
	rg.GET("/:id/commits/page-count", api.pageCount(svc.CommitPageCount))
	rg.GET("/:id/issues", api.issues)
	rg.GET("/:id/issues/page-count", api.pageCount(svc.IssuePageCount))
	rg.GET("/:id/pulls", api.pullRequests)
	rg.GET("/:id/pulls/page-count", api.pageCount(svc.PullRequestPageCount))

	rg.POST("/:id/comments", api.createComment, staffMiddleware())
	rg.GET("/:id/comments", api.queryComments)
	rg.DELETE("/:id/comments/:commentID", api.destroyComment, staffMiddleware())
}

func (api *repoApi) create(ctx echo.Context) error {
	projectID, err := intParam(ctx, "projectID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceProject, ProjectID: projectID,
	}); err != nil {
		return err
	}

	var data repo.NewRepo
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRepo")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	rep, err := api.svc.Create(ctx.Request().Context(), projectID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func (api *repoApi) query(ctx echo.Context) error {
	repos, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying repos")
	}
	if repos == nil {
		repos = []repo.Repo{}
	}
	return ctx.JSON(http.StatusOK, repos)
}

func (api *repoApi) queryByProject(ctx echo.Context) error {
	projectID, err := intParam(ctx, "projectID")
	if err != nil {
		return err
	}
	repos, err := api.svc.QueryByProject(ctx.Request().Context(), projectID)
	if err != nil {
		return err
	}
	if repos == nil {
		repos = []repo.Repo{}
	}
	return ctx.JSON(http.StatusOK, repos)
}

func (api *repoApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	rep, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *repoApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceRepo, RepoID: id,
	}); err != nil {
		return err
	}

	var data repo.UpdateRepo
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRepo")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	rep, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *repoApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionDelete, policy.Resource{
		Type: policy.ResourceRepo, RepoID: id,
	}); err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *repoApi) commits(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var page PageRequest
	if err = page.BindDefaults(ctx); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	commits, err := api.svc.Commits(reqCtx, id, page.Page, page.PageSize)
	if err != nil {
		return err
	}
	count, err := api.svc.CommitPageCount(reqCtx, id, page.PageSize)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PagedResponse{
		Results: commits, Page: page.Page, PageSize: page.PageSize, PageCount: count,
	})
}

func (api *repoApi) pageCount(count func(ctx context.Context, repoID, pageSize int) (int, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := intParam(ctx, "id")
		if err != nil {
			return err
		}
		var page PageRequest
		if err = page.BindDefaults(ctx); err != nil {
			return err
		}

		n, err := count(ctx.Request().Context(), id, page.PageSize)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, echo.Map{"page_count": n})
	}
}

func (api *repoApi) issues(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var page PageRequest
	if err = page.BindDefaults(ctx); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	issues, err := api.svc.Issues(reqCtx, id, page.Page, page.PageSize)
	if err != nil {
		return err
	}
	count, err := api.svc.IssuePageCount(reqCtx, id, page.PageSize)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PagedResponse{
		Results: issues, Page: page.Page, PageSize: page.PageSize, PageCount: count,
	})
}

func (api *repoApi) pullRequests(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var page PageRequest
	if err = page.BindDefaults(ctx); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	pulls, err := api.svc.PullRequests(reqCtx, id, page.Page, page.PageSize)
	if err != nil {
		return err
	}
	count, err := api.svc.PullRequestPageCount(reqCtx, id, page.PageSize)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PagedResponse{
		Results: pulls, Page: page.Page, PageSize: page.PageSize, PageCount: count,
	})
}

func (api *repoApi) createComment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionUpdate, policy.Resource{
		Type: policy.ResourceRepo, RepoID: id,
	}); err != nil {
		return err
	}
	clms, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data repo.NewComment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	cmt, err := api.svc.AddComment(ctx.Request().Context(), id, clms.UserID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *repoApi) queryComments(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	comments, err := api.svc.QueryComments(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []repo.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *repoApi) destroyComment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	commentID, err := intParam(ctx, "commentID")
	if err != nil {
		return err
	}
	if err = api.gate.allow(ctx, policy.ActionDelete, policy.Resource{
		Type: policy.ResourceRepo, RepoID: id,
	}); err != nil {
		return err
	}
	if err = api.svc.DeleteComment(ctx.Request().Context(), id, commentID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
