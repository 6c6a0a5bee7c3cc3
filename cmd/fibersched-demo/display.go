package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// styles is a small, fixed palette used for section headers and
// pass/fail summary lines.
type styles struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Dim   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// isTTY decides whether to use styled output at all.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// section prints a styled (or plain, on non-TTY output) header line.
func section(title string) {
	s := defaultStyles()
	if isTTY() {
		fmt.Println(s.Title.Render("== " + title + " =="))
		return
	}
	fmt.Println("== " + title + " ==")
}

func summary(ok bool, msg string) {
	s := defaultStyles()
	if !isTTY() {
		if ok {
			fmt.Println("PASS: " + msg)
		} else {
			fmt.Println("FAIL: " + msg)
		}
		return
	}
	if ok {
		fmt.Println(s.Pass.Render("PASS") + ": " + msg)
	} else {
		fmt.Println(s.Fail.Render("FAIL") + ": " + msg)
	}
}
