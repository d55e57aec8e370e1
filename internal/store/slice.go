package store

// EntitySlice expõe as transições de uma coleção do store
type EntitySlice[T any] struct {
	store *Store
	slice func(*State) *Slice[T]
}

// SetLoading marca o início de uma leitura. Ao ligar, limpa o erro anterior.
func (h EntitySlice[T]) SetLoading(loading bool) {
	h.store.mutate(func(st *State) {
		sl := h.slice(st)
		sl.Loading = loading
		if loading {
			sl.Error = nil
		}
	})
}

// SetItems substitui a coleção inteira
func (h EntitySlice[T]) SetItems(items []T) {
	copied := make([]T, len(items))
	copy(copied, items)

	h.store.mutate(func(st *State) {
		sl := h.slice(st)
		sl.Items = copied
		sl.Loading = false
		sl.Error = nil
	})
}

// SetError registra a falha mantendo os últimos itens conhecidos
func (h EntitySlice[T]) SetError(message string) {
	h.store.mutate(func(st *State) {
		sl := h.slice(st)
		sl.Loading = false
		sl.Error = &message
	})
}

// Clear esvazia a coleção
func (h EntitySlice[T]) Clear() {
	h.store.mutate(func(st *State) {
		*h.slice(st) = Slice[T]{Items: []T{}}
	})
}

func (h EntitySlice[T]) Get() Slice[T] {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	sl := *h.slice(&h.store.state)
	sl.Items = append([]T{}, sl.Items...)
	if sl.Error != nil {
		msg := *sl.Error
		sl.Error = &msg
	}
	return sl
}
