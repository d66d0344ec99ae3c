package main

import (
	"context"
	"fmt"
	"io"

	"hkn-admin/internal/models"
)

func (cli *commandLine) slot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("slot " + sub)

	switch sub {
	case "create", "update":
		id := fs.Int("id", 0, "slot id (update only)")
		hour := fs.Int("hour", 0, "hour of day, within the tutoring window")
		wday := fs.Int("wday", 0, "weekday, 1 (Mon) to 5 (Fri)")
		room := fs.Int("room", 0, "room code, 0 (Cory) or 1 (Soda)")

		var required []string
		if sub == "update" {
			required = append(required, "id")
		}
		set, err := cli.parse(fs, args, required...)
		if err != nil {
			return err
		}

		ns := models.NewSlot{
			Hour: opt(set, "hour", *hour),
			Wday: opt(set, "wday", *wday),
			Room: opt(set, "room", *room),
		}

		var slot *models.Slot
		if sub == "create" {
			slot, err = cli.svc.CreateSlot(ctx, ns)
		} else {
			slot, err = cli.svc.UpdateSlot(ctx, *id, ns)
		}
		if err != nil {
			return err
		}
		return cli.emit(newSlotView(*slot), func(w io.Writer) {
			fmt.Fprintf(w, "slot %d: %s\n", slot.ID, slot)
		})

	case "list":
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		slots, err := cli.svc.ListSlots(ctx)
		if err != nil {
			return err
		}
		return cli.emitSlots(slots)

	case "schedule":
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		blocks, err := cli.svc.Schedule(ctx)
		if err != nil {
			return err
		}
		views := make([]blockView, 0, len(blocks))
		for _, b := range blocks {
			views = append(views, newBlockView(b))
		}
		return cli.emit(views, func(w io.Writer) {
			for _, v := range views {
				fmt.Fprintf(w, "%s %s %d:00-%d:00 (%d slots)\n", v.RoomName, v.Day, v.Start, v.End, len(v.SlotIDs))
			}
		})

	case "delete":
		id := fs.Int("id", 0, "slot id")
		if _, err := cli.parse(fs, args, "id"); err != nil {
			return err
		}
		if err := cli.svc.DeleteSlot(ctx, *id); err != nil {
			return err
		}
		return cli.emit(map[string]int{"deleted": *id}, func(w io.Writer) {
			fmt.Fprintf(w, "slot %d deleted\n", *id)
		})

	case "clear":
		yes := fs.Bool("yes", false, "confirm deleting every slot")
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		if !*yes {
			fmt.Fprintln(cli.out, "refusing to delete every slot without -yes")
			return errHelp
		}
		n, err := cli.svc.ClearSlots(ctx)
		if err != nil {
			return err
		}
		return cli.emit(map[string]int{"deleted": n}, func(w io.Writer) {
			fmt.Fprintf(w, "%d slots deleted\n", n)
		})

	case "assign", "unassign":
		slotID := fs.Int("slot", 0, "slot id")
		tutorID := fs.Int("tutor", 0, "tutor id")
		if _, err := cli.parse(fs, args, "slot", "tutor"); err != nil {
			return err
		}
		var err error
		verb := "assigned to"
		if sub == "assign" {
			err = cli.svc.AssignTutor(ctx, *slotID, *tutorID)
		} else {
			verb = "removed from"
			err = cli.svc.UnassignTutor(ctx, *slotID, *tutorID)
		}
		if err != nil {
			return err
		}
		return cli.emit(map[string]int{"slot_id": *slotID, "tutor_id": *tutorID}, func(w io.Writer) {
			fmt.Fprintf(w, "tutor %d %s slot %d\n", *tutorID, verb, *slotID)
		})

	case "tutors":
		id := fs.Int("id", 0, "slot id")
		if _, err := cli.parse(fs, args, "id"); err != nil {
			return err
		}
		tutors, err := cli.svc.SlotTutors(ctx, *id)
		if err != nil {
			return err
		}
		return cli.emitTutors(tutors)

	case "availabilities":
		id := fs.Int("id", 0, "slot id")
		if _, err := cli.parse(fs, args, "id"); err != nil {
			return err
		}
		slot, err := cli.svc.GetSlot(ctx, *id)
		if err != nil {
			return err
		}
		avails, err := cli.svc.Availabilities(ctx, *slot)
		if err != nil {
			return err
		}
		return cli.emitAvailabilities(avails)

	default:
		cli.printUsage()
		return errHelp
	}
}
