// Package metadata defines the off-chain JSON document that describes an
// issued diploma, and resolves it back from the blob store.
//
// The document is advisory. The ledger record is authoritative for the
// student's name, specialization, issue date and validity.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/go-playground/validator"
)

// DateLayout is the layout of Document.IssueDate.
const DateLayout = "2006-01-02"

// Document is the metadata JSON stored next to a certificate file.
type Document struct {
	StudentName    string `json:"studentName" validate:"required,max=256"`
	StudentAddress string `json:"studentAddress" validate:"required,address"`
	Specialization string `json:"specialization" validate:"required,max=256"`
	IssueDate      string `json:"issueDate" validate:"required,issuedate"`
	FileHash       string `json:"fileHash" validate:"required"`
	FileURL        string `json:"fileURL" validate:"required,url"`
	FileName       string `json:"fileName" validate:"required"`
	FileType       string `json:"fileType" validate:"required"`
	FileSize       int64  `json:"fileSize" validate:"gt=0"`
	IssuerAddress  string `json:"issuerAddress" validate:"required,address"`
	IssuerName     string `json:"issuerName" validate:"required"`
	Timestamp      int64  `json:"timestamp" validate:"gt=0"`
}

// File describes the uploaded certificate file.
type File struct {
	Hash string
	URL  string
	Name string
	Type string
	Size int64
}

// Subject is who the document is about and who issued it.
type Subject struct {
	StudentName    string
	StudentAddress string
	Specialization string
	IssuerAddress  string
	IssuerName     string
}

// ValidationError names the first field that failed validation.
type ValidationError struct {
	error
	Field string
	Tag   string
}

func (v ValidationError) Unwrap() error { return v.error }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return model.IsValidAddress(fl.Field().String())
	})
	v.RegisterValidation("issuedate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// New builds a document stamped at t. IssueDate is t's UTC calendar date,
// so the two time fields can never disagree.
func New(subject Subject, file File, t time.Time) *Document {
	ts := t.UTC()
	return &Document{
		StudentName:    subject.StudentName,
		StudentAddress: subject.StudentAddress,
		Specialization: subject.Specialization,
		IssueDate:      ts.Format(DateLayout),
		FileHash:       file.Hash,
		FileURL:        file.URL,
		FileName:       file.Name,
		FileType:       file.Type,
		FileSize:       file.Size,
		IssuerAddress:  subject.IssuerAddress,
		IssuerName:     subject.IssuerName,
		Timestamp:      ts.UnixMilli(),
	}
}

// Validate checks field presence and formats, and that IssueDate is the
// UTC date of Timestamp.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var validateErrors validator.ValidationErrors
		if errors.As(err, &validateErrors) && len(validateErrors) > 0 {
			first := validateErrors[0]
			return ValidationError{
				error: model.Errorf(model.KindInvalidInput, "metadata field %s fails '%s'", first.Field(), first.Tag()),
				Field: first.Field(),
				Tag:   first.Tag(),
			}
		}
		return err
	}
	if want := d.IssuedAt().Format(DateLayout); d.IssueDate != want {
		return ValidationError{
			error: model.Errorf(model.KindInvalidInput, "metadata issueDate %s does not match timestamp (%s)", d.IssueDate, want),
			Field: "IssueDate",
			Tag:   "timestamp",
		}
	}
	return nil
}

// IssuedAt returns Timestamp as a time.
func (d *Document) IssuedAt() time.Time {
	return time.UnixMilli(d.Timestamp).UTC()
}

// Encode validates d and serialises it.
func (d *Document) Encode() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

// Decode parses a document, rejecting unknown fields, wrongly typed values
// and anything Validate rejects.
func Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, model.Wrap(model.KindInvalidInput, err, "malformed metadata document")
	}
	if dec.More() {
		return nil, model.Errorf(model.KindInvalidInput, "trailing data after metadata document")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
