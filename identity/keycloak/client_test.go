package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmachain-service/pkg/logger"
)

// keycloakStub fakes the subset of the admin API the service talks to.
type keycloakStub struct {
	mux        *http.ServeMux
	tokenHits  int
	users      map[string]UserRepresentation
	roleGrants map[string][]string
	createCode int
}

func newKeycloakStub(t *testing.T) (*keycloakStub, *httptest.Server) {
	t.Helper()
	stub := &keycloakStub{
		mux:        http.NewServeMux(),
		users:      make(map[string]UserRepresentation),
		roleGrants: make(map[string][]string),
		createCode: http.StatusCreated,
	}

	stub.mux.HandleFunc("POST /realms/pharmachain/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		stub.tokenHits++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "stub-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	stub.mux.HandleFunc("POST /admin/realms/pharmachain/users", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if stub.createCode != http.StatusCreated {
			w.WriteHeader(stub.createCode)
			return
		}
		var user UserRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		id := "b1f6a0aa-0000-4000-8000-000000000042"
		user.ID = id
		stub.users[id] = user
		w.Header().Set("Location", "/admin/realms/pharmachain/users/"+id)
		w.WriteHeader(http.StatusCreated)
	})

	stub.mux.HandleFunc("GET /admin/realms/pharmachain/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		user, ok := stub.users[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})

	stub.mux.HandleFunc("PUT /admin/realms/pharmachain/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		var user UserRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		user.ID = r.PathValue("id")
		stub.users[user.ID] = user
		w.WriteHeader(http.StatusNoContent)
	})

	stub.mux.HandleFunc("DELETE /admin/realms/pharmachain/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		delete(stub.users, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	stub.mux.HandleFunc("GET /admin/realms/pharmachain/roles/{name}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_ = json.NewEncoder(w).Encode(roleRepresentation{ID: "role-id-1", Name: r.PathValue("name")})
	})

	stub.mux.HandleFunc("POST /admin/realms/pharmachain/users/{id}/role-mappings/realm", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		var roles []roleRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&roles))
		for _, role := range roles {
			stub.roleGrants[r.PathValue("id")] = append(stub.roleGrants[r.PathValue("id")], role.Name)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	stub.mux.HandleFunc("PUT /admin/realms/pharmachain/users/{id}/reset-password", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		var credential Credential
		require.NoError(t, json.NewDecoder(r.Body).Decode(&credential))
		assert.Equal(t, "password", credential.Type)
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(stub.mux)
	t.Cleanup(server.Close)
	return stub, server
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer stub-token", r.Header.Get("Authorization"), "Admin calls must carry the service-account token")
}

func newTestAdminService(server *httptest.Server) AdminService {
	return NewAdminService(Config{
		BaseURL:           server.URL,
		Realm:             "pharmachain",
		AdminClientID:     "pharmachain-admin",
		AdminClientSecret: "stub-secret",
		Timeout:           2 * time.Second,
	}, logger.NoOpLogger())
}

func TestCreateUser_ParsesLocationHeader(t *testing.T) {
	stub, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	id, err := svc.CreateUser(context.Background(), UserRepresentation{
		Username: "jdupont",
		Enabled:  true,
		Attributes: map[string][]string{
			"code":     {"DRV-1"},
			"userType": {"DRIVER"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "b1f6a0aa-0000-4000-8000-000000000042", id, "The id comes from the Location header")
	assert.Equal(t, 1, stub.tokenHits, "One token fetch serves the whole exchange")

	stored := stub.users[id]
	assert.Equal(t, "jdupont", stored.Username)
	assert.Equal(t, []string{"DRV-1"}, stored.Attributes["code"])
}

func TestCreateUser_ConflictOnExistingUsername(t *testing.T) {
	stub, server := newKeycloakStub(t)
	stub.createCode = http.StatusConflict
	svc := newTestAdminService(server)

	_, err := svc.CreateUser(context.Background(), UserRepresentation{Username: "jdupont"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists", "A 409 maps to a username conflict")
}

func TestAssignRealmRole_ResolvesThenMaps(t *testing.T) {
	stub, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	id, err := svc.CreateUser(context.Background(), UserRepresentation{Username: "jdupont"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRealmRole(context.Background(), id, "DRIVER"))
	assert.Equal(t, []string{"DRIVER"}, stub.roleGrants[id], "The resolved role is mapped onto the user")
}

func TestSetEnabled_ReadModifyWrite(t *testing.T) {
	stub, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	id, err := svc.CreateUser(context.Background(), UserRepresentation{Username: "jdupont", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, svc.SetEnabled(context.Background(), id, false))
	assert.False(t, stub.users[id].Enabled, "The stored representation should be disabled")
	assert.Equal(t, "jdupont", stub.users[id].Username, "The rest of the representation survives the write")
}

func TestUpdateAttributes_MergesIntoExisting(t *testing.T) {
	stub, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	id, err := svc.CreateUser(context.Background(), UserRepresentation{
		Username:   "jdupont",
		Attributes: map[string][]string{"code": {"DRV-1"}, "phone": {"0601020304"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateAttributes(context.Background(), id, map[string][]string{"phone": {"0605060708"}}))

	attrs := stub.users[id].Attributes
	assert.Equal(t, []string{"0605060708"}, attrs["phone"], "Submitted attributes overwrite")
	assert.Equal(t, []string{"DRV-1"}, attrs["code"], "Untouched attributes are kept")
}

func TestDeleteUser_ToleratesMissingUser(t *testing.T) {
	_, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	err := svc.DeleteUser(context.Background(), "already-gone")
	assert.NoError(t, err, "Deleting an absent user is not an error")
}

func TestResetPassword(t *testing.T) {
	_, server := newKeycloakStub(t)
	svc := newTestAdminService(server)

	id, err := svc.CreateUser(context.Background(), UserRepresentation{Username: "jdupont"})
	require.NoError(t, err)

	assert.NoError(t, svc.ResetPassword(context.Background(), id, "fresh-pass", true))
}
