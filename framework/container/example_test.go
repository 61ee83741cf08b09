package container_test

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-container/framework/container"
)

// Types used in examples only.
type Mailer interface{ Send(to string) string }

type smtpMailer struct{ Host string }

func (m *smtpMailer) Send(to string) string { return "smtp(" + m.Host + ") -> " + to }

type logMailer struct{}

func (m *logMailer) Send(to string) string { return "log -> " + to }

type Signup struct{ Mailer Mailer }
type Newsletter struct{ Mailer Mailer }

func exampleContainer() *container.Container {
	c := container.New()
	types := c.Types()
	_ = types.Interface("Mailer", (*Mailer)(nil))
	_ = types.Register("smtpMailer", func(host string) *smtpMailer {
		return &smtpMailer{Host: host}
	}, container.Params("host"), container.Default("host", "localhost"))
	_ = types.Struct("logMailer", logMailer{})
	_ = types.Register("Signup", func(m Mailer) *Signup { return &Signup{Mailer: m} })
	_ = types.Register("Newsletter", func(m Mailer) *Newsletter { return &Newsletter{Mailer: m} })
	return c
}

func ExampleContainer_Bind() {
	c := exampleContainer()
	_ = c.Bind("Mailer", "smtpMailer")

	signup, _ := container.Resolve[*Signup](c, "Signup")
	fmt.Println(signup.Mailer.Send("ada"))
	// Output: smtp(localhost) -> ada
}

func ExampleContainer_Singleton() {
	c := exampleContainer()
	_ = c.Singleton("Mailer", func() *logMailer { return &logMailer{} })

	a, _ := container.Resolve[*Signup](c, "Signup")
	b, _ := container.Resolve[*Newsletter](c, "Newsletter")
	fmt.Println(a.Mailer == b.Mailer)
	// Output: true
}

func ExampleContainer_When() {
	c := exampleContainer()
	_ = c.Bind("Mailer", "smtpMailer")
	c.When("Newsletter").Needs("Mailer").Give("logMailer")
	c.When("smtpMailer").Needs("$host").Give("mail.example.com")

	signup, _ := container.Resolve[*Signup](c, "Signup")
	news, _ := container.Resolve[*Newsletter](c, "Newsletter")
	fmt.Println(signup.Mailer.Send("ada"))
	fmt.Println(news.Mailer.Send("ada"))
	// Output:
	// smtp(mail.example.com) -> ada
	// log -> ada
}

func ExampleContainer_Create_missingPrimitive() {
	c := container.New()
	_ = c.Types().Register("PrimBinding", func(s string) *PrimBinding {
		return &PrimBinding{MyString: s}
	}, container.Params("myString"))

	_, err := c.Create("PrimBinding")
	fmt.Println(errors.Is(err, container.ErrUnresolvableParameter))
	fmt.Println(err)
	// Output:
	// true
	// container: could not resolve parameter $myString for dependant PrimBinding
}

func ExampleGetInstance() {
	c := exampleContainer()
	container.SetInstance(c)

	shared, err := container.GetInstance()
	fmt.Println(shared == c, err)
	// Output: true <nil>
}
