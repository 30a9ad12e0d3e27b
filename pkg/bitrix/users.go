package bitrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// User is a user.get entry. Custom profile fields (UF_*) stay in Fields.
type User struct {
	ID       string
	Name     string
	LastName string
	Fields   map[string]any
}

// Field returns a profile field rendered as text, or "" when absent.
func (u User) Field(name string) string {
	if name == "" {
		return ""
	}
	return fieldString(u.Fields[name])
}

func (u User) FullName() string {
	switch {
	case u.Name == "":
		return u.LastName
	case u.LastName == "":
		return u.Name
	}
	return u.Name + " " + u.LastName
}

func fieldString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		if len(v) > 0 {
			return fieldString(v[0])
		}
		return ""
	}
	return fmt.Sprint(v)
}

func decodeUsers(raw json.RawMessage) ([]User, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("user.get: decode result: %w", err)
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, User{
			ID:       fieldString(row["ID"]),
			Name:     fieldString(row["NAME"]),
			LastName: fieldString(row["LAST_NAME"]),
			Fields:   row,
		})
	}
	return users, nil
}

// User fetches one profile by id.
func (c *Client) User(ctx context.Context, webhook, userID string) (User, error) {
	env, err := c.get(ctx, webhook, "user.get", url.Values{"ID": {userID}})
	if err != nil {
		return User{}, err
	}
	users, err := decodeUsers(env.Result)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, fmt.Errorf("user.get %s: %w", userID, ErrNoResult)
	}
	return users[0], nil
}

// maxPages bounds pagination in case a portal keeps returning next.
const maxPages = 200

// ActiveUsers lists every active user, following the next cursor page by page.
func (c *Client) ActiveUsers(ctx context.Context, webhook string) ([]User, error) {
	var all []User
	start := 0
	for page := 0; page < maxPages; page++ {
		params := url.Values{"ACTIVE": {"Y"}}
		if start > 0 {
			params.Set("start", strconv.Itoa(start))
		}
		env, err := c.get(ctx, webhook, "user.get", params)
		if err != nil {
			return nil, err
		}
		users, err := decodeUsers(env.Result)
		if err != nil {
			return nil, err
		}
		all = append(all, users...)
		if env.Next <= start {
			return all, nil
		}
		start = env.Next
	}
	return all, nil
}
