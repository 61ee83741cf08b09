package container_test

import (
	"errors"
	"testing"
	"time"

	"github.com/km-arc/go-container/framework/container"
)

// Shared test types and constructors used across test files.

// mustRegister calls t.Fatal if registration fails.
func mustRegister(t testing.TB, c *container.Container, name string, ctor any, opts ...container.TypeOption) {
	t.Helper()
	if err := c.Types().Register(name, ctor, opts...); err != nil {
		t.Fatalf("Register(%q): %v", name, err)
	}
}

// mustStruct calls t.Fatal if struct registration fails.
func mustStruct(t testing.TB, c *container.Container, name string, sample any) {
	t.Helper()
	if err := c.Types().Struct(name, sample); err != nil {
		t.Fatalf("Struct(%q): %v", name, err)
	}
}

// mustInterface calls t.Fatal if interface registration fails.
func mustInterface(t testing.TB, c *container.Container, name string, ptr any) {
	t.Helper()
	if err := c.Types().Interface(name, ptr); err != nil {
		t.Fatalf("Interface(%q): %v", name, err)
	}
}

// Fixtures built with Struct carry a field: pointers to zero-size values
// may share one address, which would defeat identity assertions.
type Foo struct{ id int }
type Bar struct{ id int }

type Baz struct{ Bar *Bar }

func NewBaz(bar *Bar) *Baz { return &Baz{Bar: bar} }

type StorageInterface interface{ Driver() string }

type S3 struct{ bucket string }

func (s *S3) Driver() string { return "s3" }

type Local struct{ Root string }

func (l *Local) Driver() string { return "local" }

func NewLocal(root string) *Local { return &Local{Root: root} }

type StorageFacade struct{ Driver StorageInterface }

func NewStorageFacade(driver StorageInterface) *StorageFacade {
	return &StorageFacade{Driver: driver}
}

type AvatarFacade struct{ Driver StorageInterface }

func NewAvatarFacade(driver StorageInterface) *AvatarFacade {
	return &AvatarFacade{Driver: driver}
}

type FooBar struct{ Num int }

func NewFooBar(num int) *FooBar { return &FooBar{Num: num} }

type BarBaz struct{ FooBar *FooBar }

func NewBarBaz(foobar *FooBar) *BarBaz { return &BarBaz{FooBar: foobar} }

type SingletonDep struct{ id int }

type Singleton struct{ Dep *SingletonDep }

type SingletonConsumerOne struct{ Single *Singleton }
type SingletonConsumerTwo struct{ Single *Singleton }

type PrimBinding struct{ MyString string }

type ItemsFactory struct{}

func (f *ItemsFactory) Items() map[string]int { return map[string]int{"a": 1, "b": 2} }

type FooWidget struct{ Items map[string]int }

type Counter struct{ Max int64 }

// Numbers records the converted value its constructor received.
type Numbers struct{ Value any }

type Unregistered struct{}

type NeedsUnregistered struct{ U *Unregistered }

type CircA struct{ B *CircB }
type CircB struct{ A *CircA }

type Holder struct{ C *container.Container }

var errBoom = errors.New("boom")

// newTestContainer registers every shared test type.
func newTestContainer(t testing.TB) *container.Container {
	t.Helper()
	c := container.New()

	mustStruct(t, c, "Foo", Foo{})
	mustStruct(t, c, "Bar", Bar{})
	mustRegister(t, c, "Baz", NewBaz)

	mustInterface(t, c, "StorageInterface", (*StorageInterface)(nil))
	mustStruct(t, c, "S3", S3{})
	mustRegister(t, c, "Local", NewLocal, container.Params("root"), container.Default("root", "/tmp"))
	mustRegister(t, c, "StorageFacade", NewStorageFacade)
	mustRegister(t, c, "AvatarFacade", NewAvatarFacade)

	mustRegister(t, c, "FooBar", NewFooBar, container.Params("num"))
	mustRegister(t, c, "BarBaz", NewBarBaz)

	mustStruct(t, c, "SingletonDep", SingletonDep{})
	mustRegister(t, c, "Singleton", func(dep *SingletonDep) *Singleton { return &Singleton{Dep: dep} })
	mustRegister(t, c, "SingletonConsumerOne", func(s *Singleton) *SingletonConsumerOne {
		return &SingletonConsumerOne{Single: s}
	})
	mustRegister(t, c, "SingletonConsumerTwo", func(s *Singleton) *SingletonConsumerTwo {
		return &SingletonConsumerTwo{Single: s}
	})

	mustRegister(t, c, "PrimBinding", func(myString string) *PrimBinding {
		return &PrimBinding{MyString: myString}
	}, container.Params("myString"))
	mustStruct(t, c, "ItemsFactory", ItemsFactory{})
	mustRegister(t, c, "FooWidget", func(items map[string]int) *FooWidget {
		return &FooWidget{Items: items}
	}, container.Params("items"))
	mustRegister(t, c, "Counter", func(max int64) *Counter { return &Counter{Max: max} }, container.Params("max"))

	mustRegister(t, c, "NeedsUnregistered", func(u *Unregistered) *NeedsUnregistered {
		return &NeedsUnregistered{U: u}
	}, container.Params("u"))

	mustRegister(t, c, "CircA", func(b *CircB) *CircA { return &CircA{B: b} })
	mustRegister(t, c, "CircB", func(a *CircA) *CircB { return &CircB{A: a} })

	mustRegister(t, c, "Holder", func(c *container.Container) *Holder { return &Holder{C: c} })
	return c
}

// countingObserver records observer callbacks.
type countingObserver struct {
	built    map[string]int
	resolved map[string]int
	failed   map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		built:    make(map[string]int),
		resolved: make(map[string]int),
		failed:   make(map[string]int),
	}
}

func (o *countingObserver) CreatorBuilt(name string) { o.built[name]++ }

func (o *countingObserver) Resolved(name string, _ time.Duration, err error) {
	if err != nil {
		o.failed[name]++
		return
	}
	o.resolved[name]++
}
