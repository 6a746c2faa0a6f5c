package sourcing

import (
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// userAttributeKeys is the allow-list of writable user attributes. Any
// other key in a create or patch payload is rejected by name.
var userAttributeKeys = []string{"name", "email", "title", "phone", "department"}

var userCreateSchema = validate.Schema{
	Params: []validate.Param{
		{Name: "attributes", Type: validate.StringMap, Required: true, AllowedKeys: userAttributeKeys},
	},
	Checks: []validate.Cross{
		func(args map[string]any) error {
			attrs := args["attributes"].(map[string]string)
			if attrs["name"] == "" {
				return &apierr.ValueError{Param: "attributes", Message: "must include a non-empty name"}
			}
			if attrs["email"] == "" {
				return &apierr.ValueError{Param: "attributes", Message: "must include a non-empty email"}
			}
			return nil
		},
	},
}

var userPatchSchema = validate.Schema{Params: []validate.Param{
	{Name: "attributes", Type: validate.StringMap, Required: true, AllowedKeys: userAttributeKeys},
}}

// ListUsers returns all users, in id order.
func (s *Sim) ListUsers() []store.Record {
	return s.store.List("users")
}

// GetUser returns one user.
func (s *Sim) GetUser(userID string) (store.Record, error) {
	rec, ok := s.store.Get("users", userID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "user", ID: userID}
	}
	return rec, nil
}

// CreateUser creates a user. Args: "attributes" (object of strings
// limited to name, email, title, phone, department; name and email are
// required).
func (s *Sim) CreateUser(args map[string]any) (store.Record, error) {
	norm, err := userCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}
	attrs := norm["attributes"].(map[string]string)

	userID := s.nextID("users")
	rec := store.Record{"id": userID, "updated_at": s.timestamp()}
	for k, v := range attrs {
		rec[k] = v
	}
	s.store.Put("users", userID, rec)
	s.log.Info("user created", "id", userID, "email", attrs["email"])
	return rec, nil
}

// PatchUser merges attributes into an existing user, under the same
// attribute allow-list as create.
func (s *Sim) PatchUser(userID string, args map[string]any) (store.Record, error) {
	norm, err := userPatchSchema.Check(args)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get("users", userID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "user", ID: userID}
	}

	for k, v := range norm["attributes"].(map[string]string) {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("users", userID, rec)
	return rec, nil
}

// DeleteUser removes a user.
func (s *Sim) DeleteUser(userID string) error {
	if !s.store.Delete("users", userID) {
		return &apierr.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}
