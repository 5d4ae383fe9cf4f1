package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"learnpath"
)

func main() {
	var (
		dbPath    = flag.String("db", "", "Path to SQLite database (default: DB_PATH or ./learnpath.db)")
		configDir = flag.String("config", ".", "Directory containing config.yaml")
		list      = flag.Bool("list", false, "List users with their saved course counts")
		deleteID  = flag.Int64("delete", 0, "Delete the user with this ID together with their courses")
		verbose   = flag.Bool("verbose", false, "Enable verbose output")
	)

	flag.Parse()

	learnpath.SetVerbose(*verbose)
	log := learnpath.Logger()

	if !*list && *deleteID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *dbPath == "" {
		cfg, err := learnpath.LoadConfig(*configDir)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		*dbPath = cfg.DBPath
	}

	db, err := learnpath.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	if *deleteID != 0 {
		if err := deleteUser(db, *deleteID, os.Stdout); err != nil {
			if errors.Is(err, learnpath.ErrNotFound) {
				log.Fatalf("No user with ID %d", *deleteID)
			}
			log.Fatalf("Failed to delete user: %v", err)
		}
	}

	if *list {
		if err := listUsers(db, os.Stdout); err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
	}
}

func listUsers(db *learnpath.DB, out io.Writer) error {
	users, err := db.GetUsers()
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tJOINED\tCOURSES")
	for _, user := range users {
		count, err := db.CountCourses(user.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			user.ID, user.Username, user.Email, user.JoinedAt.Format("2006-01-02"), count)
	}
	return tw.Flush()
}

// deleteUser removes a user; their saved courses go with them
func deleteUser(db *learnpath.DB, id int64, out io.Writer) error {
	user, err := db.GetUserByID(id)
	if err != nil {
		return err
	}
	count, err := db.CountCourses(id)
	if err != nil {
		return err
	}

	if err := db.DeleteUser(id); err != nil {
		return err
	}

	learnpath.VerboseLog("Deleted user %d (%s)", id, user.Username)
	fmt.Fprintf(out, "Deleted user %d (%s) and %d saved course(s)\n", id, user.Username, count)
	return nil
}
