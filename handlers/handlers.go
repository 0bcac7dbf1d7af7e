// Package handlers implements the HTTP surface described in SPEC_FULL.md
// §4.10, adapted from the teacher's handlers.go: a struct of injected
// service dependencies, gin handler methods, and a shared sendError helper.
package handlers

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunii-encode/native-pack-encoder/models"
	"github.com/lunii-encode/native-pack-encoder/service"
)

// Handlers holds the service dependencies the HTTP routes call into.
type Handlers struct {
	encoderService service.EncoderService
}

// NewHandlers creates a Handlers instance with its service dependency
// injected.
func NewHandlers(encoderService service.EncoderService) *Handlers {
	return &Handlers{encoderService: encoderService}
}

// HealthResponse is returned by HealthHandler.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler reports service liveness.
//
//	@Summary		Health Check
//	@Description	Returns the health status of the encoding service
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now()})
}

// EncodeResponse describes a successful encode.
type EncodeResponse struct {
	Ref      string `json:"ref"`
	PackUUID string `json:"pack_uuid"`
}

// EncodeHandler accepts a multipart Studio Pack ZIP and returns the native
// pack ZIP as the response body.
//
//	@Summary		Encode a Studio Pack into a native pack
//	@Description	Converts an uploaded Studio Pack ZIP into a byte-exact native on-device pack ZIP.
//	@Tags			Encoder
//	@Accept			multipart/form-data
//	@Produce		application/zip
//	@Param			pack		formData	file	true	"Studio Pack ZIP"
//	@Param			version		formData	string	true	"V2 or V3"
//	@Param			aes_key		formData	string	false	"Hex AES key, required for V3"
//	@Param			aes_iv		formData	string	false	"Hex AES iv, required for V3"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	models.ErrorResponse
//	@Failure		500			{object}	models.ErrorResponse
//	@Router			/encode [post]
func (h *Handlers) EncodeHandler(c *gin.Context) {
	requestID := c.GetHeader("X-Trace-Id")
	if requestID == "" {
		requestID = fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	log.Printf("[INFO] [%s] EncodeHandler: starting request from %s", requestID, c.ClientIP())

	fileHeader, err := c.FormFile("pack")
	if err != nil {
		log.Printf("[ERROR] [%s] EncodeHandler: no pack file provided: %v", requestID, err)
		sendError(c, http.StatusBadRequest, "MISSING_FILE", "Studio Pack ZIP not provided")
		return
	}

	version := models.Version(c.PostForm("version"))
	if !version.IsValid() {
		sendError(c, http.StatusBadRequest, "INVALID_VERSION", "version must be V2 or V3")
		return
	}

	opts := models.EncodeOptions{Version: version}
	if version == models.VersionV3 {
		key, keyErr := hexForm(c, "aes_key")
		iv, ivErr := hexForm(c, "aes_iv")
		if keyErr != nil || ivErr != nil {
			sendError(c, http.StatusBadRequest, "INVALID_KEY", "aes_key and aes_iv must be valid hex for V3")
			return
		}
		opts.AESKey, opts.AESIV = key, iv
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "failed to read uploaded file")
		return
	}

	workDir, err := os.MkdirTemp("", "lunii-upload-*")
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "failed to stage upload")
		return
	}
	defer os.RemoveAll(workDir)

	inputPath, err := service.SaveUpload(workDir, "input.zip", data)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "failed to stage upload")
		return
	}
	opts.OutputPath = inputPath + ".native.zip"

	result, err := h.encoderService.Encode(inputPath, opts)
	if err != nil {
		writeEncodeError(c, err)
		return
	}

	outData, err := os.ReadFile(result.OutputPath)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "failed to read encoded output")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, result.Ref))
	c.Header("X-Pack-Ref", result.Ref)
	c.Data(http.StatusOK, "application/zip", outData)
	log.Printf("[INFO] [%s] EncodeHandler: encoded ref=%s (%d bytes)", requestID, result.Ref, len(outData))
}

// hexForm decodes a hex-encoded form field, returning nil, nil when absent.
func hexForm(c *gin.Context, field string) ([]byte, error) {
	v := c.PostForm(field)
	if v == "" {
		return nil, nil
	}
	return hex.DecodeString(v)
}

// writeEncodeError maps a structured pipeline error onto the appropriate
// HTTP status, per §7's three error classes.
func writeEncodeError(c *gin.Context, err error) {
	switch err.(type) {
	case *models.InvalidInputError, *models.InvalidGraphError, *models.MissingAssetError:
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case *models.ConfigurationError, *models.EnvironmentError:
		sendError(c, http.StatusUnprocessableEntity, "CONFIGURATION_ERROR", err.Error())
	default:
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", err.Error())
	}
}

// sendError sends a standardized error response.
func sendError(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, models.ErrorResponse{
		Success: false,
		Error: models.ErrorDetail{
			Message: message,
			Details: map[string]interface{}{"code": code},
		},
	})
}
