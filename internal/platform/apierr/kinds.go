package apierr

import (
	"errors"
	"net/http"
)

const (
	CodeInvalidInput         = "invalid_input"
	CodeUnsupportedFormat    = "unsupported_format"
	CodeSizeLimitExceeded    = "size_limit_exceeded"
	CodeQuotaExceeded        = "quota_exceeded"
	CodeUploadFailed         = "upload_failed"
	CodeNotFound             = "not_found"
	CodeNetworkError         = "network_error"
	CodeTranscriptionFailed  = "transcription_failed"
	CodeTranscriptionTimeout = "transcription_timeout"
	CodeMalformedModelOutput = "malformed_model_output"
	CodeAlreadyExists        = "already_exists"
)

func orMsg(err error, msg string) error {
	if err != nil {
		return err
	}
	return errors.New(msg)
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, orMsg(err, "invalid input"))
}

func UnsupportedFormat(err error) *Error {
	return New(http.StatusBadRequest, CodeUnsupportedFormat, orMsg(err, "unsupported file format"))
}

func SizeLimitExceeded(err error) *Error {
	return New(http.StatusBadRequest, CodeSizeLimitExceeded, orMsg(err, "file size limit exceeded"))
}

func QuotaExceeded(err error) *Error {
	return New(http.StatusBadRequest, CodeQuotaExceeded, orMsg(err, "quota exceeded"))
}

func UploadFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeUploadFailed, orMsg(err, "upload failed"))
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, orMsg(err, "not found"))
}

func NetworkError(err error) *Error {
	return New(http.StatusBadGateway, CodeNetworkError, orMsg(err, "network error"))
}

func TranscriptionFailed(err error) *Error {
	return New(http.StatusBadRequest, CodeTranscriptionFailed, orMsg(err, "transcription failed"))
}

func TranscriptionTimeout(err error) *Error {
	return New(http.StatusGatewayTimeout, CodeTranscriptionTimeout, orMsg(err, "transcription timed out"))
}

func MalformedModelOutput(err error) *Error {
	return New(http.StatusBadRequest, CodeMalformedModelOutput, orMsg(err, "malformed model output"))
}

func AlreadyExists(err error) *Error {
	return New(http.StatusConflict, CodeAlreadyExists, orMsg(err, "already exists"))
}
