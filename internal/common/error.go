package common

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"runtime"
	"strconv"

	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
	"github.com/DODOEX/huffcodec/utils/helpers"
	"github.com/duke-git/lancet/v2/slice"
)

type HTTPErrors interface {
	JobStatus() JobStatus
	Message() string
	Error() string
	StatusCode() int
	Body() []byte
	String() string
}

type httpError struct {
	Status  int    `json:"code"`
	Name    string `json:"error"`
	Msg     string `json:"message"`
	Details error  `json:"details,omitempty"`
	file    string // 文件名
	line    int    // 行号
}

func (e httpError) JobStatus() JobStatus {
	switch e.Name {
	case "Bad Request":
		fallthrough
	case "Unprocessable Entity":
		fallthrough
	case "Not Found":
		return Fail
	}

	if errors.Is(e.Details, context.Canceled) || errors.Is(e.Details, context.DeadlineExceeded) {
		return Cancel
	}

	return Error
}

func (e httpError) Message() string {
	return e.Msg
}

func (e httpError) Error() string {
	if e.Details == nil {
		return helpers.Concat(e.Name, ": ", e.Message())
	}
	return e.Details.Error()
}

func (e httpError) StatusCode() int {
	return e.Status
}

func (e httpError) Body() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		log.Fatal(err)
	}
	return data
}

func (e httpError) String() string {
	return e.Error() + " \n" + e.file + ":" + strconv.Itoa(e.line)
}

func NewHttpError(status int, name, msg string, errs ...error) httpError {
	errs = slice.Compact(errs)
	if len(errs) <= 0 {
		return httpError{
			Status:  status,
			Name:    name,
			Msg:     msg,
			Details: nil,
		}
	}

	msg = errs[0].Error()

	return httpError{
		Status:  status,
		Name:    name,
		Msg:     msg,
		Details: errs[0],
	}
}

// CodecError classifies an error returned by the codec packages.
// Malformed input is the client's fault, anything else is ours.
func CodecError(err error) httpError {
	var e httpError
	switch {
	case errors.Is(err, codec.ErrInvalidHeader),
		errors.Is(err, codec.ErrUnsupportedVersion),
		errors.Is(err, huffman.ErrTruncatedStream),
		errors.Is(err, huffman.ErrCorruptStream):
		e = NewHttpError(400, "Bad Request", "Malformed compressed data", err)
	case errors.Is(err, huffman.ErrUnknownSymbol),
		errors.Is(err, huffman.ErrInvalidUTF8):
		e = NewHttpError(422, "Unprocessable Entity", "Input does not fit the alphabet", err)
	default:
		e = NewHttpError(500, "Internal Server Error", "", err)
	}
	_, file, line, _ := runtime.Caller(1)
	e.file, e.line = file, line
	return e
}

func BadRequestError(msg string, errs ...error) httpError {
	err := NewHttpError(400, "Bad Request", msg, errs...)
	_, file, line, _ := runtime.Caller(1)
	err.file, err.line = file, line
	return err
}

func NotFoundError(msg string, errs ...error) httpError {
	err := NewHttpError(404, "Not Found", msg, errs...)
	_, file, line, _ := runtime.Caller(1)
	err.file, err.line = file, line
	return err
}

func InternalServerError(msg string, errs ...error) httpError {
	err := NewHttpError(500, "Internal Server Error", msg, errs...)
	_, file, line, _ := runtime.Caller(1)
	err.file, err.line = file, line
	return err
}

func ServiceUnavailableError(msg string, errs ...error) httpError {
	err := NewHttpError(503, "Service Unavailable", msg, errs...)
	_, file, line, _ := runtime.Caller(1)
	err.file, err.line = file, line
	return err
}
