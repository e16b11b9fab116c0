package cli

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

const menuText = `
MEDICAL APPOINTMENT SCHEDULER

1. Add Patient
2. Add Doctor
3. Book Appointment
4. Cancel Appointment
5. Complete Appointment
6. Reschedule Appointment
7. View Appointments
8. View All People
9. Statistics
0. Exit
`

// RunMenu runs the interactive menu loop until the user exits or input is
// exhausted. Domain errors are printed and the loop continues.
func (a *App) RunMenu(ctx context.Context) error {
	sc := bufio.NewScanner(a.In)
	for {
		a.printf("%s\nEnter your choice: ", menuText)
		if !sc.Scan() {
			return sc.Err()
		}
		var err error
		switch strings.TrimSpace(sc.Text()) {
		case "1":
			err = a.menuAddPatient(ctx, sc)
		case "2":
			err = a.menuAddDoctor(ctx, sc)
		case "3":
			err = a.menuBook(ctx, sc)
		case "4":
			err = a.Cancel(ctx, a.prompt(sc, "Appointment ID: "))
		case "5":
			id := a.prompt(sc, "Appointment ID: ")
			err = a.Complete(ctx, id, a.prompt(sc, "Notes (optional): "))
		case "6":
			err = a.menuReschedule(ctx, sc)
		case "7":
			err = a.menuList(sc)
		case "8":
			a.People()
		case "9":
			a.Stats()
		case "0":
			a.printf("Goodbye.\n")
			return nil
		default:
			a.printf("Invalid choice.\n")
		}
		if err != nil {
			a.printf("Error: %v\n", err)
		}
	}
}

func (a *App) prompt(sc *bufio.Scanner, label string) string {
	a.printf("%s", label)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

func (a *App) menuAddPatient(ctx context.Context, sc *bufio.Scanner) error {
	name := a.prompt(sc, "Patient name: ")
	contact := a.prompt(sc, "Contact info: ")
	age := -1
	if s := a.prompt(sc, "Age (optional): "); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.printf("Ignoring unparseable age %q.\n", s)
		} else {
			age = n
		}
	}
	return a.AddPatient(ctx, name, contact, age)
}

func (a *App) menuAddDoctor(ctx context.Context, sc *bufio.Scanner) error {
	name := a.prompt(sc, "Doctor name: ")
	contact := a.prompt(sc, "Contact info: ")
	specialty := a.prompt(sc, "Specialty: ")
	start := a.prompt(sc, "Workday start HH:MM (empty for default): ")
	end := a.prompt(sc, "Workday end HH:MM (empty for default): ")
	days := a.prompt(sc, "Working days, e.g. Mon,Tue (empty for Mon-Fri): ")
	return a.AddDoctor(ctx, name, contact, specialty, start, end, days)
}

func (a *App) menuBook(ctx context.Context, sc *bufio.Scanner) error {
	a.People()
	patientID := a.prompt(sc, "Patient ID: ")
	doctorID := a.prompt(sc, "Doctor ID: ")
	start := a.prompt(sc, "Start (YYYY-MM-DD HH:MM): ")
	minutes := 30
	if s := a.prompt(sc, "Duration minutes (empty for 30): "); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			a.printf("Ignoring unparseable duration %q.\n", s)
		} else {
			minutes = n
		}
	}
	return a.Book(ctx, patientID, doctorID, start, minutes)
}

func (a *App) menuReschedule(ctx context.Context, sc *bufio.Scanner) error {
	id := a.prompt(sc, "Appointment ID: ")
	start := a.prompt(sc, "New start (YYYY-MM-DD HH:MM): ")
	return a.Reschedule(ctx, id, start, 0)
}

func (a *App) menuList(sc *bufio.Scanner) error {
	patientID := a.prompt(sc, "Filter by patient ID (empty for all): ")
	doctorID := a.prompt(sc, "Filter by doctor ID (empty for all): ")
	status := a.prompt(sc, "Filter by status (empty for all): ")
	date := a.prompt(sc, "Filter by date YYYY-MM-DD (empty for all): ")
	return a.List(patientID, doctorID, status, date)
}
