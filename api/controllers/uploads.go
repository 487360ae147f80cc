package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/boutique2v/commerce-backend/api/responses"
	uploadsvc "github.com/boutique2v/commerce-backend/internal/uploads"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// multipartMemoryLimit bounds how much of the form is buffered in memory;
// the rest spills to temp files.
const multipartMemoryLimit = 8 << 20

// AdminUploadImage accepts a multipart product image and stores it.
func AdminUploadImage(svc uploadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		name, data, err := readUploadedFile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := uploadsvc.Scope(strings.TrimSpace(r.FormValue("scope")))
		if scope == "" {
			scope = uploadsvc.ScopeProducts
		}

		result, err := svc.UploadImage(r.Context(), uploadsvc.UploadInput{
			Scope:    scope,
			FileName: name,
			Data:     data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// readUploadedFile pulls the first "file" part out of a multipart form.
func readUploadedFile(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field missing")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read uploaded file")
	}
	return header.Filename, data, nil
}
