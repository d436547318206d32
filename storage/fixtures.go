package storage

import (
	"time"

	"taskdeck/record"
)

// fixtureTables seeds the mock store with a believable working set: four
// categories and tasks spread around today so the today and overdue views
// have content out of the box.
func fixtureTables() map[string][]record.Record {
	now := time.Now().UTC()
	due := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.RFC3339)
	}
	created := now.AddDate(0, 0, -10).Format(time.RFC3339)

	categories := []record.Record{
		{"Id": 1, "Name": "Work", "Tags": "", "color": "#5B4CFF", "task_count": 0},
		{"Id": 2, "Name": "Personal", "Tags": "", "color": "#FF6B6B", "task_count": 0},
		{"Id": 3, "Name": "Shopping", "Tags": "", "color": "#4ECDC4", "task_count": 0},
		{"Id": 4, "Name": "Health", "Tags": "", "color": "#FFD93D", "task_count": 0},
	}

	tasks := []record.Record{
		{"Id": 1, "Name": "Finish quarterly report", "Tags": "", "title": "Finish quarterly report",
			"description": "Numbers from finance are in the shared folder", "category": 1, "priority": 3,
			"due_date": due(-2), "completed": false, "created_at": created, "order": 0},
		{"Id": 2, "Name": "Review pull requests", "Tags": "", "title": "Review pull requests",
			"description": "", "category": 1, "priority": 2,
			"due_date": due(0), "completed": false, "created_at": created, "order": 1},
		{"Id": 3, "Name": "Book dentist appointment", "Tags": "", "title": "Book dentist appointment",
			"description": "Ask about the evening slots", "category": 4, "priority": 2,
			"due_date": due(-1), "completed": false, "created_at": created, "order": 2},
		{"Id": 4, "Name": "Buy groceries", "Tags": "", "title": "Buy groceries",
			"description": "Milk, eggs, coffee beans", "category": 3, "priority": 1,
			"due_date": due(0), "completed": false, "created_at": created, "order": 3},
		{"Id": 5, "Name": "Call the plumber", "Tags": "", "title": "Call the plumber",
			"description": "Kitchen sink still dripping", "category": 2, "priority": 3,
			"due_date": due(-3), "completed": true, "created_at": created, "order": 4},
		{"Id": 6, "Name": "Plan weekend trip", "Tags": "", "title": "Plan weekend trip",
			"description": "Compare train and car options", "category": 2, "priority": 1,
			"due_date": due(3), "completed": false, "created_at": created, "order": 5},
		{"Id": 7, "Name": "Renew gym membership", "Tags": "", "title": "Renew gym membership",
			"description": "", "category": 4, "priority": 1,
			"due_date": due(5), "completed": false, "created_at": created, "order": 6},
		{"Id": 8, "Name": "Prepare sprint demo", "Tags": "", "title": "Prepare sprint demo",
			"description": "Walk through the reorder flow", "category": 1, "priority": 3,
			"due_date": due(1), "completed": false, "created_at": created, "order": 7},
	}

	return map[string][]record.Record{
		record.TableTasks:      tasks,
		record.TableCategories: categories,
	}
}
