// Package merger — стадия конвейера с параллельным пулом воркеров.
//
// На каждое сообщение из очереди data.ingest.done создаётся задача,
// которая уходит в ограниченный пул: до MaxWorkers сообщений
// обрабатываются одновременно. Prefetch брокера равен размеру пула —
// брокер не выдаст больше неподтверждённых сообщений, чем пул способен
// обрабатывать, это и есть backpressure.
//
// Обработка одного сообщения: загрузить все JSON-документы из входной
// директории, переименовать поле summary в text, объединить в один
// массив, сохранить в pending-директорию, запустить downstream-ингест,
// удалить временный файл и опубликовать событие для стадии analyzer.
package merger
