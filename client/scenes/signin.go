package scenes

import (
	"github.com/cbodonnell/gameservices/client/fonts"
	"github.com/cbodonnell/gameservices/client/input"
	"github.com/cbodonnell/gameservices/client/ui"
	"github.com/cbodonnell/gameservices/pkg/gameservices/firebase"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

// SignInScene renders a firebase.SignInForm.
type SignInScene struct {
	BaseScene

	form           firebase.SignInForm
	ui             *ebitenui.UI
	emailTextInput *widget.TextInput
	email          string
	password       string
	errMsg         string
	submitting     bool
	canceled       bool
}

var _ Scene = &SignInScene{}

func NewSignInScene(form firebase.SignInForm) *SignInScene {
	return &SignInScene{
		form: form,
	}
}

func (s *SignInScene) Init() error {
	s.renderUI()
	s.emailTextInput.Focus(true)
	return nil
}

func newTextInput(placeholder string, secure bool, onChange func(text string)) *widget.TextInput {
	normalFontFace := fonts.TTFNormalFont
	return widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
				Stretch:  true,
			}),
		),
		widget.TextInputOpts.MobileInputMode("text"),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     image.NewNineSliceColor(inputColor),
			Disabled: image.NewNineSliceColor(inputColor),
		}),
		widget.TextInputOpts.Face(normalFontFace),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:          textColor,
			Disabled:      disabledTextColor,
			Caret:         textColor,
			DisabledCaret: disabledTextColor,
		}),
		widget.TextInputOpts.Padding(widget.NewInsetsSimple(5)),
		widget.TextInputOpts.CaretOpts(
			widget.CaretOpts.Size(normalFontFace, 2),
		),
		widget.TextInputOpts.Placeholder(placeholder),
		widget.TextInputOpts.Secure(secure),
		widget.TextInputOpts.ChangedHandler(func(args *widget.TextInputChangedEventArgs) {
			onChange(args.InputText)
		}),
	)
}

func newButton(label string, handler func(args *widget.ButtonClickedEventArgs)) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{
			Idle:    image.NewNineSliceColor(buttonColor),
			Hover:   image.NewNineSliceColor(buttonHoverColor),
			Pressed: image.NewNineSliceColor(buttonPressColor),
		}),
		widget.ButtonOpts.Text(label, fonts.TTFNormalFont, &widget.ButtonTextColor{
			Idle:     textColor,
			Disabled: disabledTextColor,
		}),
		widget.ButtonOpts.TextPadding(widget.Insets{
			Left:   15,
			Right:  15,
			Top:    5,
			Bottom: 5,
		}),
		widget.ButtonOpts.ClickedHandler(handler),
	)
}

func (s *SignInScene) renderUI() {
	normalFontFace := fonts.TTFNormalFont

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(panelColor)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(20),
			widget.RowLayoutOpts.Padding(widget.Insets{
				Top:    110,
				Left:   120,
				Right:  120,
				Bottom: 90,
			}))),
	)

	rootContainer.AddChild(widget.NewText(
		widget.TextOpts.Text("Sign in to save your scores", normalFontFace, textColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
	))

	emailTextInput := newTextInput("Email", false, func(text string) {
		s.email = text
	})
	emailTextInput.SetText(s.email)
	rootContainer.AddChild(emailTextInput)

	passwordTextInput := newTextInput("Password", true, func(text string) {
		s.password = text
	})
	passwordTextInput.SetText(s.password)
	rootContainer.AddChild(passwordTextInput)

	submitLabel := "Sign In"
	if s.submitting {
		submitLabel = "Signing In..."
	}
	submitButton := newButton(submitLabel, func(args *widget.ButtonClickedEventArgs) {
		s.submit()
	})
	submitButton.GetWidget().Disabled = s.submitting
	cancelButton := newButton("Not Now", func(args *widget.ButtonClickedEventArgs) {
		s.cancel()
	})

	buttonContainer := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Stretch: true,
			}),
		),
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(2),
			widget.GridLayoutOpts.Spacing(20, 0),
			widget.GridLayoutOpts.Stretch([]bool{true, true}, []bool{true}),
		)),
	)
	buttonContainer.AddChild(submitButton)
	buttonContainer.AddChild(cancelButton)
	rootContainer.AddChild(buttonContainer)

	if s.errMsg != "" {
		rootContainer.AddChild(widget.NewText(
			widget.TextOpts.Text(s.errMsg, normalFontFace, errorTextColor),
			widget.TextOpts.WidgetOpts(
				widget.WidgetOpts.LayoutData(widget.RowLayoutData{
					Position: widget.RowLayoutPositionStart,
				}),
			),
		))
		s.errMsg = ""
	}

	submitHandler := func(args interface{}) {
		s.submit()
	}
	emailTextInput.SubmitEvent.AddHandler(submitHandler)
	passwordTextInput.SubmitEvent.AddHandler(submitHandler)

	s.ui = &ebitenui.UI{
		Container: rootContainer,
	}
	s.emailTextInput = emailTextInput
}

func (s *SignInScene) submit() {
	if s.submitting || s.canceled {
		return
	}
	defer s.renderUI()

	if s.email == "" {
		s.errMsg = "Email is required."
		return
	}
	if s.password == "" {
		s.errMsg = "Password is required."
		return
	}

	s.submitting = true
	s.form.OnSubmit(s.email, s.password, func(err error) {
		s.submitting = false
		if err != nil {
			log.Error("Failed to sign in: %v", err)
			s.errMsg = ui.Message(err, "Failed to sign in. Please try again.")
		}
		s.renderUI()
	})
}

func (s *SignInScene) cancel() {
	if s.canceled {
		return
	}
	s.canceled = true
	s.form.OnCancel()
}

func (s *SignInScene) Update() error {
	if input.IsNegativeJustPressed() {
		s.cancel()
		return nil
	}
	s.ui.Update()
	return nil
}

func (s *SignInScene) Draw(screen *ebiten.Image) {
	s.ui.Draw(screen)
}
