// Package registry реализует in-memory реестр задач.
//
// Registry передаётся явным хэндлом во все компоненты при конструировании —
// глобального состояния нет. Мутация только под мьютексом; читатели получают
// point-in-time копии и могут сериализовать их без блокировки.
package registry
