// Package analyzer — стадия конвейера с последовательной обработкой.
//
// Сообщения из очереди history.graph.done попадают во внутреннюю
// неограниченную FIFO-очередь и подтверждаются сразу. Единственный
// фоновый воркер доводит одну задачу до финального статуса прежде, чем
// взять следующую: в любой момент не более одной задачи находится в
// processing/waiting_for_remote. Указатель на текущую задачу защищён
// собственным мьютексом и читается status API конкурентно с воркером.
//
// Для каждой задачи: найти артефакты во входной директории, для каждого
// по порядку — staged-копия с полем _id, отправка во внешний сервис
// анализа, polling до финального состояния. Сбой одного артефакта не
// срывает пакет — артефакт пропускается, пакет продолжается.
package analyzer
