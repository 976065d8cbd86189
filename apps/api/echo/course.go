package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type courseApi struct {
	svc      *course.Service
	userSvc  *user.Service
	quizSvc  *quiz.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *course.Service,
	userSvc *user.Service,
	quizSvc *quiz.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:      svc,
		userSvc:  userSvc,
		quizSvc:  quizSvc,
		validate: validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.overview)
	cg.POST("/:id/enroll", api.enroll)

	lg := g.Group("/lessons", jwt)
	lg.GET("/:id", api.retrieveLesson)
	lg.GET("/:id/quiz", api.lessonQuiz)
	lg.POST("/:id/quiz", api.submitQuiz)
	lg.POST("/:id/project", api.submitProject)

	sg := g.Group("/submissions", jwt)
	sg.GET("/:id", api.reviewSubmission)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) overview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	overview, err := api.svc.GetOverview(ctx.Request().Context(), claims.Identity(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) retrieveLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lsn, err := api.svc.CheckLessonAccess(ctx.Request().Context(), claims.Identity(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *courseApi) lessonQuiz(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lsn, err := api.svc.CheckLessonAccess(ctx.Request().Context(), claims.Identity(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}

	questions, err := api.quizSvc.LessonQuestions(ctx.Request().Context(), lsn.ID)
	if err != nil {
		return errors.Wrap(err, "listing lesson questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *courseApi) submitQuiz(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data quiz.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.CheckLessonAccess(ctx.Request().Context(), claims.Identity(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	review, err := api.quizSvc.SubmitQuiz(ctx.Request().Context(), usr, lsn.ID, data.Answers)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusCreated, review)
}

func (api *courseApi) submitProject(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.ProjectSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.CheckLessonAccess(ctx.Request().Context(), claims.Identity(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.quizSvc.SubmitProject(ctx.Request().Context(), usr, lsn, data.Link)
	if err != nil {
		return errors.Wrap(err, "submitting project")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *courseApi) reviewSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	review, err := api.quizSvc.ReviewSubmission(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "reviewing submission")
	}
	return ctx.JSON(http.StatusOK, review)
}
