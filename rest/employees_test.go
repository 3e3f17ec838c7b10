package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/go-session/rest"
)

func TestEmployeesClientMyTeam(t *testing.T) {
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/employees/my-team", r.URL.Path)
		_, _ = w.Write([]byte(`{"companies":[{"companyName":"Acme","members":[{"_id":"u1","name":"Jordan","email":"jordan@example.com"}]}]}`))
	})

	companies, err := rest.NewEmployeesClient(d).MyTeam(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].CompanyName)
	require.Len(t, companies[0].Members, 1)
	assert.Equal(t, "Jordan", companies[0].Members[0].Name)
}

func TestEmployeesClientAdd(t *testing.T) {
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/employees", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@example.com", body["email"])

		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, rest.NewEmployeesClient(d).Add(context.Background(), "new@example.com"))
}

func TestEmployeesClientRemoveEscapesEmail(t *testing.T) {
	var gotPath string
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, rest.NewEmployeesClient(d).Remove(context.Background(), "a+b@example.com"))
	assert.Equal(t, "/api/employees/a+b@example.com", gotPath)
}

func TestEmployeesClientTeamBirthdays(t *testing.T) {
	d, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/employees/team-birthdays", r.URL.Path)
		_, _ = w.Write([]byte(`{"birthdays":[{"_id":"u3","name":"Ana","dateOfBirth":"1995-08-14"}]}`))
	})

	birthdays, err := rest.NewEmployeesClient(d).TeamBirthdays(context.Background())
	require.NoError(t, err)
	require.Len(t, birthdays, 1)
	assert.Equal(t, "Ana", birthdays[0].Name)
}
