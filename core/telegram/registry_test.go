package telegram

import (
	"testing"

	"github.com/m3rciful/finbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start", Aliases: []string{"begin"}})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Debug", Hidden: true})
	reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "duplicate"})

	if got := len(reg.Commands()); got != 2 {
		t.Fatalf("commands = %d, want 2", got)
	}
	if key, cmd, ok := reg.LookupCommand("begin"); !ok || key != "/start" || cmd.Description != "Start" {
		t.Fatalf("alias lookup = %q %+v %v", key, cmd, ok)
	}
	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 2 || all[0].Text != "debug" {
		t.Fatalf("all = %+v", all)
	}
}

func TestRegistryFallbacks(t *testing.T) {
	reg := NewRegistry()
	if reg.TextFallback() != nil || reg.CallbackHandler() != nil {
		t.Fatal("fallbacks must start empty")
	}
	reg.SetTextFallback(noop)
	reg.SetCallbackHandler(noop)
	if reg.TextFallback() == nil || reg.CallbackHandler() == nil {
		t.Fatal("fallbacks not stored")
	}
}
