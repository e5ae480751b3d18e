package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ogunkayacan/lisans/core/license"
)

type licenseApi struct {
	svc      *license.Service
	validate *validator.Validate
}

func registerLicenseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *license.Service, validate *validator.Validate) {
	api := licenseApi{
		svc:      svc,
		validate: validate,
	}

	lg := g.Group("/licenses")

	// un-authed endpoints; this is what deployed apps call on startup
	lg.POST("/verify", api.verify)

	// admin endpoints
	ag := lg.Group("", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:key", api.retrieve)
	ag.DELETE("/:key", api.destroy)
}

// Handlers

func (api *licenseApi) verify(ctx echo.Context) error {
	var data VerifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Verify(data.Key))
}

func (api *licenseApi) create(ctx echo.Context) error {
	var data license.NewLicense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLicense")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lic, err := api.svc.Issue(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "issuing license")
	}
	return ctx.JSON(http.StatusCreated, lic)
}

func (api *licenseApi) query(ctx echo.Context) error {
	var query FilterLicensesRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []license.License{})
	}

	var (
		lics []license.License
		err  error
	)
	if query.isZero() {
		lics, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		lics, err = api.svc.Filter(ctx.Request().Context(), license.QueryFilter{Year: query.Year, Active: query.Active})
	}
	if err != nil {
		return errors.Wrap(err, "querying licenses")
	}
	if lics == nil {
		lics = []license.License{}
	}
	return ctx.JSON(http.StatusOK, lics)
}

func (api *licenseApi) retrieve(ctx echo.Context) error {
	lic, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lic)
}

func (api *licenseApi) destroy(ctx echo.Context) error {
	lic, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), lic.ID); err != nil {
		return errors.Wrap(err, "deleting license")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getObject fetches the License addressed by the `key` path param.
func (api *licenseApi) getObject(ctx echo.Context) (license.License, error) {
	key := ctx.Param("key")
	if err := api.validate.Var(key, "licensekey"); err != nil {
		return license.License{}, errHttpNotFound
	}

	lic, err := api.svc.GetByKey(ctx.Request().Context(), key)
	if err != nil {
		if errors.Cause(err) == license.ErrNotFound {
			return license.License{}, errHttpNotFound
		}
		return license.License{}, errors.Wrap(err, "finding license by key")
	}
	return lic, nil
}

type (
	VerifyRequest struct {
		Key string `json:"key" validate:"required"`
	}

	FilterLicensesRequest struct {
		Year   int   `query:"year"`
		Active *bool `query:"active"`
	}
)

func (vr *VerifyRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(vr)
}

func (fr FilterLicensesRequest) isZero() bool {
	return fr.Year == 0 && fr.Active == nil
}
