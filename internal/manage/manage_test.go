package manage

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athujoshi24/legendary-panel/internal/repository"
	"github.com/athujoshi24/legendary-panel/internal/services"
	"github.com/athujoshi24/legendary-panel/internal/testutil"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

func newTestRoot(t *testing.T) (*cobra.Command, services.AuthService, *bytes.Buffer) {
	t.Helper()
	auth := services.NewAuthService(repository.NewUserRepository(testutil.NewDB(t)), []byte("manage-test-secret"), time.Hour)
	root := NewRootCmd(func(context.Context) (*Env, error) {
		return &Env{Auth: auth, Close: func() {}}, nil
	})
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	return root, auth, out
}

func run(root *cobra.Command, args ...string) error {
	root.SetArgs(args)
	return root.Execute()
}

func TestCreateUser(t *testing.T) {
	root, auth, out := newTestRoot(t)

	require.NoError(t, run(root, "createuser", "--email", "cook@Example.com", "--password", "secret-pass", "--name", "Cook"))
	assert.Contains(t, out.String(), "cook@example.com")

	u, err := auth.Authenticate(context.Background(), "cook@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Cook", u.Name)
	assert.False(t, u.IsSuperuser)
}

func TestCreateUserWithoutPasswordCannotLogin(t *testing.T) {
	root, auth, _ := newTestRoot(t)

	require.NoError(t, run(root, "createuser", "--email", "nopw@example.com"))
	_, err := auth.Authenticate(context.Background(), "nopw@example.com", "")
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}

func TestCreateUserRequiresEmail(t *testing.T) {
	root, _, _ := newTestRoot(t)
	assert.Error(t, run(root, "createuser", "--password", "secret-pass"))
}

func TestCreateSuperuser(t *testing.T) {
	root, auth, _ := newTestRoot(t)

	require.NoError(t, run(root, "createsuperuser", "--email", "root@example.com", "--password", "secret-pass"))
	u, err := auth.GetUserByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
}

func TestDeleteUser(t *testing.T) {
	root, auth, out := newTestRoot(t)
	require.NoError(t, run(root, "createuser", "--email", "gone@example.com"))

	require.NoError(t, run(root, "deleteuser", "gone@example.com"))
	assert.Contains(t, out.String(), "deleted user")

	_, err := auth.GetUserByEmail(context.Background(), "gone@example.com")
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	assert.Error(t, run(root, "deleteuser", "gone@example.com"))
}
