package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModals(t *testing.T) {
	m := NewModals()

	assert.Equal(t, ModalNone, m.Active())
	assert.Equal(t, LabelCopy, m.CopyLabel())
	_, ok := m.Pending()
	assert.False(t, ok)
}

func TestOpenFromNoneSucceeds(t *testing.T) {
	tests := []struct {
		name string
		open func(*Modals) error
		want ModalID
	}{
		{"create", (*Modals).OpenCreate, ModalCreate},
		{"revoke", func(m *Modals) error { return m.OpenRevokeConfirm("3") }, ModalRevoke},
		{"logout", (*Modals).OpenLogoutConfirm, ModalLogout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModals()
			require.NoError(t, tt.open(m))
			assert.Equal(t, tt.want, m.Active())
			assert.True(t, m.IsActive(tt.want))
		})
	}
}

func TestOpenWhileActiveIsRejected(t *testing.T) {
	m := NewModals()
	require.NoError(t, m.OpenRevokeConfirm("1"))

	err := m.OpenCreate()
	assert.ErrorIs(t, err, ErrModalActive)
	assert.ErrorIs(t, m.OpenLogoutConfirm(), ErrModalActive)
	assert.ErrorIs(t, m.OpenRevokeConfirm("2"), ErrModalActive)

	state := m.State()
	assert.Equal(t, ModalRevoke, state.Active)
	assert.Equal(t, "1", state.RevokeTarget.String())
}

func TestOpenCreateResetsInput(t *testing.T) {
	m := NewModals()
	m.SetNameInput("leftover")

	require.NoError(t, m.OpenCreate())

	assert.Equal(t, "", m.NameInput())
	assert.True(t, m.InputFocused())

	m.SetNameInput("ci")
	assert.Equal(t, "ci", m.NameInput())
}

func TestCloseNonActiveIsNoop(t *testing.T) {
	m := NewModals()
	m.Close(ModalSuccess)
	assert.Equal(t, ModalNone, m.Active())

	require.NoError(t, m.OpenCreate())
	m.Close(ModalLogout)
	m.Close(ModalNone)
	assert.Equal(t, ModalCreate, m.Active())

	m.Close(ModalCreate)
	assert.Equal(t, ModalNone, m.Active())
	assert.False(t, m.InputFocused())
}

func TestClosingRevokeClearsPending(t *testing.T) {
	m := NewModals()
	require.NoError(t, m.OpenRevokeConfirm("9"))

	id, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, "9", id.String())

	m.Close(ModalRevoke)
	_, ok = m.Pending()
	assert.False(t, ok)
	assert.Equal(t, ModalNone, m.Active())
}

func TestTakePending(t *testing.T) {
	m := NewModals()
	_, ok := m.TakePending()
	assert.False(t, ok)

	require.NoError(t, m.OpenRevokeConfirm("4"))
	id, ok := m.TakePending()
	require.True(t, ok)
	assert.Equal(t, "4", id.String())

	_, ok = m.TakePending()
	assert.False(t, ok)
}

func TestShowSuccessReplacesCreate(t *testing.T) {
	m := NewModals()
	require.NoError(t, m.OpenCreate())

	require.NoError(t, m.ShowSuccess("sk_live_abc"))

	state := m.State()
	assert.Equal(t, ModalSuccess, state.Active)
	assert.Equal(t, "sk_live_abc", state.GeneratedKey)
	assert.False(t, m.InputFocused())

	m.Close(ModalSuccess)
	assert.Equal(t, "", m.GeneratedKey())
}

func TestCloseActive(t *testing.T) {
	m := NewModals()
	require.NoError(t, m.OpenLogoutConfirm())
	m.CloseActive()
	assert.Equal(t, ModalNone, m.Active())

	m.CloseActive()
	assert.Equal(t, ModalNone, m.Active())
}

func TestModalsConcurrentAccess(t *testing.T) {
	m := NewModals()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if m.OpenCreate() == nil {
				m.Close(ModalCreate)
			}
		}()
		go func() {
			defer wg.Done()
			_ = m.State()
			_ = m.CopyLabel()
		}()
	}
	wg.Wait()

	assert.Equal(t, ModalNone, m.Active())
}

func TestShowSuccessRequiresCreate(t *testing.T) {
	t.Run("revoke active", func(t *testing.T) {
		m := NewModals()
		require.NoError(t, m.OpenRevokeConfirm("7"))

		err := m.ShowSuccess("k")
		require.ErrorIs(t, err, ErrNotCreating)

		assert.Equal(t, ModalRevoke, m.Active())
		assert.Empty(t, m.GeneratedKey())
		id, ok := m.Pending()
		require.True(t, ok)
		assert.Equal(t, "7", id.String())

		m.Close(ModalRevoke)
		_, ok = m.Pending()
		assert.False(t, ok)
	})

	t.Run("nothing active", func(t *testing.T) {
		m := NewModals()

		require.ErrorIs(t, m.ShowSuccess("k"), ErrNotCreating)
		assert.Equal(t, ModalNone, m.Active())
		assert.Empty(t, m.GeneratedKey())
	})
}
