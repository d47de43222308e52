package apperr

import "fmt"

// Code is a stable, client-visible error code.
type Code string

const (
	CodeUnauthorizedAccess Code = "1001"
	CodeConcurrencyUpdate  Code = "1002"

	CodeCreateAccountInvalidFileType Code = "2001"
	CodeUpdateAccountInvalidFileType Code = "2002"
	CodeCreateUserInvalidFileType    Code = "2003"
	CodeUpdateUserInvalidFileType    Code = "2004"
	CodeCreateProductInvalidFileType Code = "2005"
	CodeUpdateProductInvalidFileType Code = "2006"
	CodeInvalidFileType              Code = "2099"

	CodeUserAlreadyExist  Code = "3001"
	CodeIncorrectPassword Code = "3002"

	CodeFetchServiceAccount Code = "4001"
	CodeFetchAccessToken    Code = "4002"
	CodeFetchRefreshFailed  Code = "4003"
	CodeFetchRetryExhausted Code = "4004"
	CodeFetchTimeout        Code = "4005"

	CodeValidation         Code = "9001"
	CodeNotFound           Code = "9002"
	CodeStorageUnavailable Code = "9003"
	CodeUnknown            Code = "9999"
)

// Entry is one row of the catalog.
type Entry struct {
	Code    Code
	Kind    Kind
	Message string
}

var catalog = []Entry{
	{CodeUnauthorizedAccess, KindBusinessRule, "Unable to access resource due to unauthorized access."},
	{CodeConcurrencyUpdate, KindConflict, "Unable to update due to record was recently modified by others."},

	{CodeCreateAccountInvalidFileType, KindBusinessRule, "Unable to create account. Please upload a valid image file for profile picture."},
	{CodeUpdateAccountInvalidFileType, KindBusinessRule, "Unable to update account details. Please upload a valid image file for profile picture."},
	{CodeCreateUserInvalidFileType, KindBusinessRule, "Unable to create user. Please upload a valid image file for profile picture."},
	{CodeUpdateUserInvalidFileType, KindBusinessRule, "Unable to update user details. Please upload a valid image file for profile picture."},
	{CodeCreateProductInvalidFileType, KindBusinessRule, "Unable to create product. Please upload a valid image file for product image."},
	{CodeUpdateProductInvalidFileType, KindBusinessRule, "Unable to update product details. Please upload a valid image file for product image."},
	{CodeInvalidFileType, KindBusinessRule, "Attachment content type is not supported."},

	{CodeUserAlreadyExist, KindBusinessRule, "Unable to sign up. User name or email is already registered."},
	{CodeIncorrectPassword, KindBusinessRule, "Unable to sign in. Incorrect password."},

	{CodeFetchServiceAccount, KindFetch, "Unable to download file with the provided service account."},
	{CodeFetchAccessToken, KindFetch, "Unable to download file with the provided access token."},
	{CodeFetchRefreshFailed, KindFetch, "Unable to refresh access token."},
	{CodeFetchRetryExhausted, KindFetch, "Unable to download file after refreshing access token."},
	{CodeFetchTimeout, KindFetch, "Remote file request timed out."},

	{CodeValidation, KindValidation, "Request is invalid."},
	{CodeNotFound, KindNotFound, "Resource not found."},
	{CodeStorageUnavailable, KindStorageUnavailable, "Internal server error."},
	{CodeUnknown, KindUnknown, "Internal server error."},
}

var byCode = func() map[Code]Entry {
	m := make(map[Code]Entry, len(catalog))
	for _, e := range catalog {
		m[e.Code] = e
	}
	return m
}()

// Lookup returns the catalog entry for code. Unregistered codes resolve to the unknown entry.
func Lookup(code Code) Entry {
	if e, ok := byCode[code]; ok {
		return e
	}
	return byCode[CodeUnknown]
}

// ValidateCatalog checks that every code appears once and carries a message.
// It is called at startup.
func ValidateCatalog() error {
	return validate(catalog)
}

func validate(entries []Entry) error {
	seen := make(map[Code]struct{}, len(entries))
	for _, e := range entries {
		if e.Code == "" || e.Message == "" {
			return fmt.Errorf("error catalog: entry %q is incomplete", e.Code)
		}
		if _, dup := seen[e.Code]; dup {
			return fmt.Errorf("error catalog: duplicate code %q", e.Code)
		}
		seen[e.Code] = struct{}{}
	}
	return nil
}
