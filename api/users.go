package api

import (
	"context"
	"strings"
)

// Login exchanges a username and password for a [User] carrying a fresh credential.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, &OperationError{Operation: OpLogin.Name, Message: "username and password are required", Err: ErrInvalidInput}
	}
	var out struct {
		Login User `json:"login"`
	}
	vars := map[string]interface{}{"username": username, "password": password}
	if err := c.Run(ctx, OpLogin, vars, &out); err != nil {
		return nil, err
	}
	return &out.Login, nil
}

// Register creates an account and returns it logged in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, &OperationError{Operation: OpRegister.Name, Message: "username, email and password are required", Err: ErrInvalidInput}
	}
	if in.Password != in.ConfirmPassword {
		return nil, &OperationError{Operation: OpRegister.Name, Message: "passwords must match", Err: ErrInvalidInput}
	}
	var out struct {
		Register User `json:"register"`
	}
	vars := map[string]interface{}{
		"username":        in.Username,
		"email":           in.Email,
		"password":        in.Password,
		"confirmPassword": in.ConfirmPassword,
	}
	if err := c.Run(ctx, OpRegister, vars, &out); err != nil {
		return nil, err
	}
	return &out.Register, nil
}
