package cli

import "errors"

func errNotLoggedIn() error {
	return errors.New("not logged in; run `taskpad login` first")
}

func errAdminOnly(username string) error {
	return adminOnlyError{username: username}
}

type adminOnlyError struct {
	username string
}

func (e adminOnlyError) Error() string {
	return "admin commands need an admin account; " + e.username + " is not an admin"
}
